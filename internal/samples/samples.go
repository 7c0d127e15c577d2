// Package samples holds small snippets with deliberate defects, used to
// demonstrate and smoke-test the rule catalog.
package samples

import (
	"sort"

	"github.com/petrarca/code-pattern-analyzer/internal/types"
)

// Unavailable is returned for languages without a sample
const Unavailable = "// No test code available for this language"

var snippets = map[types.Language]string{
	types.LanguagePython: `
# Python code with deliberate bugs
def buggy_function():
    try:
        # Bare except
        x = 1 / 0
    except:
        print("Error occurred")

    # Wrong comparison with None
    if x == None:
        print("x is None")

    # Infinite loop
    while True:
        print("This will run forever")

    # Security issue
    user_input = "1 + 1"
    result = eval(user_input)

    # Performance issue
    items = [1, 2, 3, 4, 5]
    result = []
    for i in range(len(items)):
        result.append(items[i] * 2)

    # Membership test using list
    if 3 in [1, 2, 3, 4, 5]:
        print("Found it")
`,
	types.LanguageJavaScript: `
// JavaScript code with deliberate bugs
function buggyFunction() {
    // Loose equality
    if (x == null) {
        console.log("x is null");
    }

    // Using undefined
    var y = undefined;

    // Security issue
    var userInput = "1 + 1";
    var result = eval(userInput);

    // Performance issue
    var array = [1, 2, 3, 4, 5];
    for (var i = 0; i < array.length; i++) {
        console.log(array[i]);
    }
}
`,
	types.LanguageJava: `
// Java code with deliberate bugs
public class BuggyClass {
    public void buggyMethod() {
        try {
            // Something that might throw an exception
            int x = 1 / 0;
        } catch (Exception e) {
            // Catching generic Exception
            System.out.println("Error occurred");
        }

        // Performance issue
        List<String> list = new ArrayList<>();
        for (int i = 0; i < list.size(); i++) {
            System.out.println(list.get(i));
        }

        // Security issue
        String command = "ls";
        Runtime.getRuntime().exec(command);
    }
}
`,
}

// For returns the sample for a language, or Unavailable
func For(lang types.Language) string {
	if s, ok := snippets[lang]; ok {
		return s
	}
	return Unavailable
}

// Languages lists the languages with a sample
func Languages() []types.Language {
	langs := make([]types.Language, 0, len(snippets))
	for l := range snippets {
		langs = append(langs, l)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })
	return langs
}
