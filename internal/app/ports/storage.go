package ports

type CachePort[T any] interface {
	Set(key string, val T)
	Get(key string) (T, bool)
	SetIfAbsent(key string, val T) bool
	ClearKey(key string)
	ClearAll()
	Len() int
}
