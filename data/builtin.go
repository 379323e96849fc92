package data

import (
	"bufio"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/ardnew/mung"
	"github.com/goccy/go-yaml"
)

// Builtins returns the tree of host information and helper functions that
// [Compile] places beneath user data. processEnv is a KEY=VALUE list backing
// the env function; nil means [os.Environ].
//
// Every call returns a fresh tree that the caller may modify.
//
//	env(name)                       process environment variable
//	target.os, target.arch          host using GNU toolchain naming
//	platform.os, platform.arch      host using Go naming
//	hostname, shell, user           host and login details
//	cwd()                           working directory
//	file.exists(p) ...              file tests: isDir, isRegular, isSymlink
//	path.abs(p) ...                 path helpers: cat([elems]), rel(from, to)
//	mung.prefix(list, [items])      PATH-style list editing
//	mung.prefixIf(list, pred, [items])
func Builtins(processEnv []string) yaml.MapSlice {
	if processEnv == nil {
		processEnv = os.Environ()
	}

	host := hostInfo()

	return yaml.MapSlice{
		{Key: "env", Value: envLookup(processEnv)},
		{Key: "target", Value: host.target.tree()},
		{Key: "platform", Value: host.platform.tree()},
		{Key: "hostname", Value: host.hostname},
		{Key: "user", Value: host.user},
		{Key: "shell", Value: host.shell},
		{Key: "cwd", Value: workingDir},
		{Key: "file", Value: yaml.MapSlice{
			{Key: "exists", Value: fileExists},
			{Key: "isDir", Value: fileIsDir},
			{Key: "isRegular", Value: fileIsRegular},
			{Key: "isSymlink", Value: fileIsSymlink},
		}},
		{Key: "path", Value: yaml.MapSlice{
			{Key: "abs", Value: absPath},
			{Key: "cat", Value: joinPath},
			{Key: "rel", Value: relPath},
		}},
		{Key: "mung", Value: yaml.MapSlice{
			{Key: "prefix", Value: listPrefix},
			{Key: "prefixIf", Value: listPrefixIf},
		}},
	}
}

// BuiltinKeys returns the top-level names defined by [Builtins].
func BuiltinKeys() []string {
	b := Builtins([]string{})
	keys := make([]string, len(b))

	for i, item := range b {
		keys[i], _ = item.Key.(string)
	}

	return keys
}

type system struct {
	OS   string
	Arch string
}

func (s system) tree() yaml.MapSlice {
	return yaml.MapSlice{
		{Key: "os", Value: s.OS},
		{Key: "arch", Value: s.Arch},
	}
}

type host struct {
	target   system
	platform system
	hostname string
	user     *user.User
	shell    string
}

var hostInfo = sync.OnceValue(func() host {
	h := host{platform: goPlatform()}
	h.target = gnuTarget(h.platform)
	h.hostname, _ = os.Hostname()

	if u, err := user.Current(); err == nil {
		h.user = u
	}

	h.shell = loginShell(h.user)

	return h
})

// goPlatform reports the host using Go naming, honoring GOHOSTOS/GOOS and
// GOHOSTARCH/GOARCH overrides.
func goPlatform() system {
	pick := func(def string, names ...string) string {
		for _, n := range names {
			if v, ok := os.LookupEnv(n); ok {
				return v
			}
		}

		return def
	}

	return system{
		OS:   pick(runtime.GOOS, "GOHOSTOS", "GOOS"),
		Arch: pick(runtime.GOARCH, "GOHOSTARCH", "GOARCH"),
	}
}

// gnuTarget translates a Go platform to GNU toolchain naming.
func gnuTarget(p system) system {
	t := p

	switch p.Arch {
	case "386":
		t.Arch = "i386"
	case "amd64":
		t.Arch = "x86_64"
	case "arm64":
		if p.OS != "darwin" {
			t.Arch = "aarch64"
		}
	case "mipsle":
		t.Arch = "mipsel"
	case "arm":
		if v, ok := os.LookupEnv("GOARM"); ok {
			v, _, _ = strings.Cut(v, ",")

			switch v = strings.TrimSpace(v); v {
			case "5", "6", "7":
				t.Arch = "armv" + v
			}
		}
	}

	return t
}

// loginShell reports $SHELL, falling back to the passwd entry of u.
func loginShell(u *user.User) string {
	if s, ok := os.LookupEnv("SHELL"); ok {
		return s
	}

	if u == nil || u.Username == "" {
		return ""
	}

	f, err := os.Open("/etc/passwd")
	if err != nil {
		return ""
	}
	defer f.Close()

	for s := bufio.NewScanner(f); s.Scan(); {
		fields := strings.Split(s.Text(), ":")
		if len(fields) > 6 && fields[0] == u.Username {
			return fields[6]
		}
	}

	return ""
}

func envLookup(processEnv []string) func(string) string {
	vars := make(map[string]string, len(processEnv))

	for _, kv := range processEnv {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}

	return func(name string) string { return vars[name] }
}

func workingDir() string {
	if wd, err := os.Getwd(); err == nil {
		return wd
	}

	return absPath(".")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)

	return !os.IsNotExist(err)
}

func fileIsDir(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.IsDir()
}

func fileIsRegular(path string) bool {
	info, err := os.Stat(path)

	return err == nil && info.Mode().IsRegular()
}

func fileIsSymlink(path string) bool {
	info, err := os.Lstat(path)

	return err == nil && info.Mode()&os.ModeSymlink != 0
}

func absPath(path string) string {
	if p, err := filepath.Abs(path); err == nil {
		return p
	}

	return path
}

func joinPath(elems []string) string { return filepath.Join(elems...) }

func relPath(from, to string) string {
	if p, err := filepath.Rel(absPath(from), absPath(to)); err == nil {
		return p
	}

	return filepath.Join(from, to)
}

// listPrefix prepends items to the delimited path list.
func listPrefix(list string, items []string) string {
	return mung.Make(
		mung.WithSubjectItems(list),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(items...),
	).String()
}

// listPrefixIf is listPrefix keeping only elements accepted by keep.
func listPrefixIf(list string, keep func(string) bool, items []string) string {
	return mung.Make(
		mung.WithSubjectItems(list),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(items...),
		mung.WithFilter(keep),
	).String()
}
