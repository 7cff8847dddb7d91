// internal/provision/signature.go
package provision

import "fmt"

// Signature builds the dimension signature a temporary variant is
// identified by. It doubles as the variant title, so the format must
// stay stable: existing variants are matched against it verbatim.
func Signature(boy, en, materialLabel string) string {
	return fmt.Sprintf("%scm × %scm - %s", boy, en, materialLabel)
}
