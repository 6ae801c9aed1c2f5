package locator

// stdlibModules mirrors sys.stdlib_module_names for CPython 3.12, keyed by
// top-level name. Private modules are included since imports of them occur
// in the wild.
var stdlibModules = map[string]struct{}{}

func init() {
	for _, name := range []string{
		"__future__", "_abc", "_aix_support", "_ast", "_asyncio", "_bisect",
		"_blake2", "_bz2", "_codecs", "_collections", "_collections_abc",
		"_compat_pickle", "_compression", "_contextvars", "_csv", "_ctypes",
		"_curses", "_datetime", "_dbm", "_decimal", "_elementtree",
		"_functools", "_hashlib", "_heapq", "_imp", "_io", "_json", "_locale",
		"_lsprof", "_lzma", "_markupbase", "_md5", "_multibytecodec",
		"_multiprocessing", "_opcode", "_operator", "_osx_support",
		"_overlapped", "_pickle", "_posixshmem", "_posixsubprocess",
		"_py_abc", "_pydatetime", "_pydecimal", "_pyio", "_pylong", "_queue",
		"_random", "_sha1", "_sha2", "_sha3", "_signal", "_sitebuiltins",
		"_socket", "_sqlite3", "_sre", "_ssl", "_stat", "_statistics",
		"_string", "_strptime", "_struct", "_symtable", "_thread",
		"_threading_local", "_tkinter", "_tokenize", "_tracemalloc",
		"_typing", "_uuid", "_warnings", "_weakref", "_weakrefset", "_winapi",
		"_zoneinfo",
		"abc", "aifc", "antigravity", "argparse", "array", "ast", "asyncio",
		"atexit", "audioop",
		"base64", "bdb", "binascii", "bisect", "builtins", "bz2",
		"cProfile", "calendar", "cgi", "cgitb", "chunk", "cmath", "cmd",
		"code", "codecs", "codeop", "collections", "colorsys", "compileall",
		"concurrent", "configparser", "contextlib", "contextvars", "copy",
		"copyreg", "crypt", "csv", "ctypes", "curses",
		"dataclasses", "datetime", "dbm", "decimal", "difflib", "dis",
		"doctest",
		"email", "encodings", "ensurepip", "enum", "errno",
		"faulthandler", "fcntl", "filecmp", "fileinput", "fnmatch",
		"fractions", "ftplib", "functools",
		"gc", "genericpath", "getopt", "getpass", "gettext", "glob",
		"graphlib", "grp", "gzip",
		"hashlib", "heapq", "hmac", "html", "http",
		"idlelib", "imaplib", "imghdr", "importlib", "inspect", "io",
		"ipaddress", "itertools",
		"json",
		"keyword",
		"lib2to3", "linecache", "locale", "logging", "lzma",
		"mailbox", "mailcap", "marshal", "math", "mimetypes", "mmap",
		"modulefinder", "msilib", "msvcrt", "multiprocessing",
		"netrc", "nis", "nntplib", "nt", "ntpath", "nturl2path", "numbers",
		"opcode", "operator", "optparse", "os", "ossaudiodev",
		"pathlib", "pdb", "pickle", "pickletools", "pipes", "pkgutil",
		"platform", "plistlib", "poplib", "posix", "posixpath", "pprint",
		"profile", "pstats", "pty", "pwd", "py_compile", "pyclbr",
		"pydoc", "pydoc_data", "pyexpat",
		"queue", "quopri",
		"random", "re", "readline", "reprlib", "resource", "rlcompleter",
		"runpy",
		"sched", "secrets", "select", "selectors", "shelve", "shlex",
		"shutil", "signal", "site", "smtplib", "sndhdr", "socket",
		"socketserver", "spwd", "sqlite3", "sre_compile", "sre_constants",
		"sre_parse", "ssl", "stat", "statistics", "string", "stringprep",
		"struct", "subprocess", "sunau", "symtable", "sys", "sysconfig",
		"syslog",
		"tabnanny", "tarfile", "telnetlib", "tempfile", "termios", "test",
		"textwrap", "this", "threading", "time", "timeit", "tkinter",
		"token", "tokenize", "tomllib", "trace", "traceback", "tracemalloc",
		"tty", "turtle", "turtledemo", "types", "typing",
		"unicodedata", "unittest", "urllib", "uu", "uuid",
		"venv",
		"warnings", "wave", "weakref", "webbrowser", "winreg", "winsound",
		"wsgiref",
		"xdrlib", "xml", "xmlrpc",
		"zipapp", "zipfile", "zipimport", "zlib", "zoneinfo",
	} {
		stdlibModules[name] = struct{}{}
	}
}

// stdlibSubmodules lists the dotted standard-library submodules imported in
// the wild. A dotted name must match here exactly; sharing a stdlib prefix is
// not enough, since "collections.OrderedDict" names an attribute, not a
// module.
var stdlibSubmodules = map[string]struct{}{}

func init() {
	for _, name := range []string{
		"collections.abc", "concurrent.futures", "ctypes.util",
		"ctypes.wintypes", "curses.ascii", "curses.panel", "curses.textpad",
		"email.charset", "email.encoders", "email.errors", "email.header",
		"email.message", "email.mime", "email.parser", "email.policy",
		"email.utils", "encodings.idna", "html.entities", "html.parser",
		"http.client", "http.cookiejar", "http.cookies", "http.server",
		"importlib.abc", "importlib.machinery", "importlib.metadata",
		"importlib.resources", "importlib.util", "json.decoder",
		"json.encoder", "json.tool", "logging.config", "logging.handlers",
		"multiprocessing.connection", "multiprocessing.dummy",
		"multiprocessing.managers", "multiprocessing.pool",
		"multiprocessing.queues", "multiprocessing.shared_memory",
		"os.path", "sqlite3.dbapi2", "tkinter.filedialog", "tkinter.font",
		"tkinter.messagebox", "tkinter.scrolledtext", "tkinter.ttk",
		"unittest.mock", "urllib.error", "urllib.parse", "urllib.request",
		"urllib.response", "urllib.robotparser", "wsgiref.handlers",
		"wsgiref.headers", "wsgiref.simple_server", "wsgiref.util",
		"xml.dom", "xml.dom.minidom", "xml.dom.pulldom", "xml.etree",
		"xml.etree.ElementTree", "xml.parsers.expat", "xml.sax",
		"xml.sax.handler", "xml.sax.saxutils", "xml.sax.xmlreader",
		"xmlrpc.client", "xmlrpc.server",
	} {
		stdlibSubmodules[name] = struct{}{}
	}
}

// IsStdlibModule reports whether a dotted name denotes a standard-library
// module. Top-level names match the module table; dotted names must be known
// submodules.
func IsStdlibModule(name string) bool {
	if _, ok := stdlibModules[name]; ok {
		return true
	}
	_, ok := stdlibSubmodules[name]
	return ok
}
