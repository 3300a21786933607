package naming

import "strings"

// escaper substitutes characters forbidden in Windows file names with
// look-alikes. strings.Replacer scans the input once, so substituted
// characters are never replaced again.
var escaper = strings.NewReplacer(
	":", ",",
	"\"", "'",
	"/", "!",
	"\\", "!",
	"|", "!",
	"?", "!",
	"*", "+",
)

// Escape replaces characters that cannot appear in a Windows file name
// with similar looking ones:
//
//	: → ,   " → '   / \ | ? → !   * → +
//
// Other characters, non-ASCII included, are kept. Escape does not deal with
// reserved names, trailing dots or length limits.
//
// Example:
//
//	Escape("AC/DC: Live?") // Returns "AC!DC, Live!"
func Escape(name string) string {
	return escaper.Replace(name)
}
