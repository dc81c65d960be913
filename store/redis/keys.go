package redis

// Key prefixes for primary entry storage.
const (
	prefixEntry = "pulse:pref:" // + namespace + ":" + key
)

// Key prefixes for set indexes.
const (
	sNamespaceKeys = "pulse:s:pref:keys:" // + namespace
	sNamespaces    = "pulse:s:pref:ns"
)

// entryKey returns the primary key for a preference entry.
func entryKey(namespace, key string) string {
	return prefixEntry + namespace + ":" + key
}

// keySetKey returns the set key holding the keys of a namespace.
func keySetKey(namespace string) string {
	return sNamespaceKeys + namespace
}
