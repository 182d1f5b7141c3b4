package notifx

// SendOptions holds optional configuration for a send operation.
type SendOptions struct {
	Tag      string
	ConfigID string
}

// Option is a functional option for send operations.
type Option func(*SendOptions)

// WithTag labels the message for provider-side analytics.
func WithTag(tag string) Option {
	return func(o *SendOptions) {
		o.Tag = tag
	}
}

// WithConfigID sets a provider-specific configuration set identifier.
func WithConfigID(id string) Option {
	return func(o *SendOptions) {
		o.ConfigID = id
	}
}

// ApplyOptions folds opts into a SendOptions value.
func ApplyOptions(opts []Option) SendOptions {
	var so SendOptions
	for _, o := range opts {
		o(&so)
	}
	return so
}
