package rpm

// compatArches lists, for each base architecture, the architectures whose
// packages can be installed on it, best first.
var compatArches = map[string][]string{
	"x86_64":   {"x86_64", "athlon", "i686", "i586", "i486", "i386", "noarch"},
	"athlon":   {"athlon", "i686", "i586", "i486", "i386", "noarch"},
	"i686":     {"i686", "i586", "i486", "i386", "noarch"},
	"i386":     {"i386", "noarch"},
	"ppc64":    {"ppc64", "ppc", "noarch"},
	"ppc":      {"ppc", "noarch"},
	"ppc64le":  {"ppc64le", "noarch"},
	"s390x":    {"s390x", "s390", "noarch"},
	"s390":     {"s390", "noarch"},
	"aarch64":  {"aarch64", "noarch"},
	"sparc64v": {"sparc64v", "sparc64", "sparcv9v", "sparcv9", "sparcv8", "sparc", "noarch"},
	"sparc64":  {"sparc64", "sparcv9", "sparcv8", "sparc", "noarch"},
	"sparc":    {"sparcv9", "sparcv8", "sparc", "noarch"},
}

// multilibArch maps a compose arch to the arch whose compat list covers multilib.
var multilibArch = map[string]string{
	"i386":  "athlon",
	"ppc":   "ppc64",
	"sparc": "sparc64v",
}

// CompatArches returns the installable architectures for a compose arch,
// including "src".
func CompatArches(arch string) []string {
	if a, ok := multilibArch[arch]; ok {
		arch = a
	}
	list, ok := compatArches[arch]
	if !ok {
		list = []string{arch, "noarch"}
	}
	out := make([]string, 0, len(list)+1)
	out = append(out, list...)
	return append(out, ArchSource)
}
