package python

// pythonKeywords are Python's hard keywords. Soft keywords (match, case,
// type) are valid attribute names and are left alone.
var pythonKeywords = map[string]bool{
	"False": true, "None": true, "True": true, "and": true, "as": true,
	"assert": true, "async": true, "await": true, "break": true, "class": true,
	"continue": true, "def": true, "del": true, "elif": true, "else": true,
	"except": true, "finally": true, "for": true, "from": true, "global": true,
	"if": true, "import": true, "in": true, "is": true, "lambda": true,
	"nonlocal": true, "not": true, "or": true, "pass": true, "raise": true,
	"return": true, "try": true, "while": true, "with": true, "yield": true,
}

// toPythonIdent converts an identifier to a valid Python identifier
// Adds underscore suffix for Python keywords
func toPythonIdent(s string) string {
	if pythonKeywords[s] {
		return s + "_"
	}
	return s
}
