// Package stdlib bundles Hades standard-library source text into the
// compiler binary. A "std" import resolves to one of these embedded
// modules instead of a file on disk; the registry is the only consumer
// of Lookup.
package stdlib

import "embed"

//go:embed sources/*.hd
var sources embed.FS

// names maps a std import name ("math") to its embedded source path.
var names = map[string]string{
	"math":   "sources/math.hd",
	"string": "sources/string.hd",
}

// Lookup returns the embedded Hades source for a standard-library module
// name, or ok=false if no such module is bundled.
func Lookup(name string) (string, bool) {
	path, ok := names[name]
	if !ok {
		return "", false
	}
	data, err := sources.ReadFile(path)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Names returns every bundled standard-library module name.
func Names() []string {
	out := make([]string, 0, len(names))
	for n := range names {
		out = append(out, n)
	}
	return out
}
