package experiment

// Variant identifies the experiment arm a visitor belongs to. The wire tokens
// are the ones the original storefront deployed with, so assignment cookies
// issued before the port keep working.
type Variant string

const (
	// VariantControl is served by the direct-tag channel (in-page tagging runtime).
	VariantControl Variant = "controle"

	// VariantTest is served by the relay channel (first-party ingestion endpoint).
	VariantTest Variant = "teste"
)

// ParseVariant maps a cookie token to its variant. ok is false for anything
// other than the two valid arms.
func ParseVariant(s string) (Variant, bool) {
	switch Variant(s) {
	case VariantControl, VariantTest:
		return Variant(s), true
	}
	return "", false
}
