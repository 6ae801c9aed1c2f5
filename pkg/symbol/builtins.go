package symbol

// pythonBuiltins is the set of callable builtins registered in every root
// context. Literal constants such as True, None, and Ellipsis are omitted
// since they are represented as local-value placeholders, not names.
var pythonBuiltins = []string{
	"abs", "aiter", "all", "anext", "any", "ascii",
	"bin", "bool", "breakpoint", "bytearray", "bytes",
	"callable", "chr", "classmethod", "compile", "complex", "copyright", "credits",
	"delattr", "dict", "dir", "divmod",
	"enumerate", "eval", "exec", "exit",
	"filter", "float", "format", "frozenset",
	"getattr", "globals",
	"hasattr", "hash", "help", "hex",
	"id", "input", "int", "isinstance", "issubclass", "iter",
	"len", "license", "list", "locals",
	"map", "max", "memoryview", "min",
	"next",
	"object", "oct", "open", "ord",
	"pow", "print", "property",
	"quit",
	"range", "repr", "reversed", "round",
	"set", "setattr", "slice", "sorted", "staticmethod", "str", "sum", "super",
	"tuple", "type",
	"vars",
	"zip",
	"__import__",
	// Exception and warning types are callable too.
	"ArithmeticError", "AssertionError", "AttributeError",
	"BaseException", "BaseExceptionGroup", "BlockingIOError", "BrokenPipeError",
	"BufferError", "BytesWarning",
	"ChildProcessError", "ConnectionAbortedError", "ConnectionError",
	"ConnectionRefusedError", "ConnectionResetError",
	"DeprecationWarning",
	"EOFError", "EncodingWarning", "EnvironmentError", "Exception", "ExceptionGroup",
	"FileExistsError", "FileNotFoundError", "FloatingPointError", "FutureWarning",
	"GeneratorExit",
	"IOError", "ImportError", "ImportWarning", "IndentationError", "IndexError",
	"InterruptedError", "IsADirectoryError",
	"KeyError", "KeyboardInterrupt",
	"LookupError",
	"MemoryError", "ModuleNotFoundError",
	"NameError", "NotADirectoryError", "NotImplementedError",
	"OSError", "OverflowError",
	"PendingDeprecationWarning", "PermissionError", "ProcessLookupError",
	"RecursionError", "ReferenceError", "ResourceWarning", "RuntimeError",
	"RuntimeWarning",
	"StopAsyncIteration", "StopIteration", "SyntaxError", "SyntaxWarning",
	"SystemError", "SystemExit",
	"TabError", "TimeoutError", "TypeError",
	"UnboundLocalError", "UnicodeDecodeError", "UnicodeEncodeError",
	"UnicodeError", "UnicodeTranslateError", "UnicodeWarning", "UserWarning",
	"ValueError",
	"Warning",
	"ZeroDivisionError",
}

// PythonBuiltins returns the callable builtins in registration order.
func PythonBuiltins() []string {
	return pythonBuiltins
}

var builtinSet = func() map[string]struct{} {
	s := make(map[string]struct{}, len(pythonBuiltins))
	for _, b := range pythonBuiltins {
		s[b] = struct{}{}
	}
	return s
}()

// IsPythonBuiltin reports whether name is a callable builtin.
func IsPythonBuiltin(name string) bool {
	_, ok := builtinSet[name]
	return ok
}
