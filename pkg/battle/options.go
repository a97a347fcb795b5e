package battle

import "io"

// DefaultNoAmmoRounds is how many rounds a game continues once every
// remaining tank is out of ammo.
const DefaultNoAmmoRounds = 40

type options struct {
	noAmmoRounds int
	roundLog     io.Writer
}

// Option configures a Manager.
type Option func(*options)

// WithNoAmmoRounds sets the shared countdown started when every remaining
// tank is out of ammo. Values below 1 are ignored.
func WithNoAmmoRounds(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.noAmmoRounds = n
		}
	}
}

// WithRoundLog writes one line per round describing each tank's action,
// followed by a final result line.
func WithRoundLog(w io.Writer) Option {
	return func(o *options) {
		o.roundLog = w
	}
}

func buildOptions(opts []Option) options {
	o := options{noAmmoRounds: DefaultNoAmmoRounds}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
