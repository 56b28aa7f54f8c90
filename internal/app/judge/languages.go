package judge

// Judge0 numeric language ids. The table is fixed; unknown language
// names fall back to the python id rather than erroring.
var languageIDs = map[string]int{
	"python":     71,
	"javascript": 63,
	"cpp":        54,
	"java":       62,
	"c":          50,
}

const defaultLanguage = "python"

func LanguageID(language string) int {
	if id, ok := languageIDs[language]; ok {
		return id
	}
	return languageIDs[defaultLanguage]
}

// KnownLanguage reports whether the name has an explicit mapping.
func KnownLanguage(language string) bool {
	_, ok := languageIDs[language]
	return ok
}
