package engine

// Settings is the configuration store an engine consumes. Values are read by
// key only; parsing them is left to the store.
type Settings interface {
	Get(key string) (any, bool)
	GetOr(key string, def any) any
	Set(key string, value any) error
	Has(key string) bool
}
