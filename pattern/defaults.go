package pattern

// defaultSpec is the literal/regex/replacement triple used to seed the
// built-in catalog; it mirrors the (name, literal, regex, replacement)
// tuple patterns_add_defaults passes to patterns_add in the original.
type defaultSpec struct {
	name        string
	literal     string // "" means no literal seed
	regex       string
	replacement string // "" means use the [REDACTED:<name>] default
}

// defaultCatalog is the built-in pattern set. It supersets the original's
// fourteen patterns_add_defaults entries with the rest of the
// high-frequency names that hotNames references, so that every name in
// hotNames resolves to a real pattern (patterns_build in the original
// silently skips any hot name with no matching pattern at all; here every
// name at least exists, though a few — digit-only card/SSN patterns — are
// deliberately left without a literal seed, same as the original).
var defaultCatalog = []defaultSpec{
	{"password_value", "password", `password["'\s:=]+[^\s"']{4,}`, ""},
	{"generic_password", "passwd", `passwd["'\s:=]+[^\s"']{4,}`, ""},
	{"secret_value", "secret", `secret["'\s:=]+[A-Za-z0-9_-]{8,}`, ""},
	{"generic_secret_key", "secret_key", `secret[_-]?key["'\s:=]+[A-Za-z0-9/+=_-]{16,}`, ""},
	{"api_key_value", "api_key", `api[_-]?key["'\s:=]+[A-Za-z0-9_-]{20,}`, ""},
	{"generic_api_key", "generic_api_key", `generic_api_key["'\s:=]+[A-Za-z0-9_-]{16,}`, ""},
	{"generic_api_secret", "api_secret", `api[_-]?secret["'\s:=]+[A-Za-z0-9/+=_-]{16,}`, ""},
	{"token_value", "token", `token["'\s:=]+[A-Za-z0-9_-]{16,}`, ""},
	{"generic_auth_token", "auth_token", `auth[_-]?token["'\s:=]+[A-Za-z0-9_.-]{8,}`, ""},
	{"credential_value", "credential", `credential["'\s:=]+[A-Za-z0-9_-]{8,}`, ""},
	{"bearer_token", "Bearer", `Bearer\s+[A-Za-z0-9._-]{8,}`, ""},
	{"aws_access_key", "AKIA", `AKIA[0-9A-Z]{16}`, ""},
	{"aws_secret_key", "aws_secret", `aws_secret_access_key["'\s:=]+[A-Za-z0-9/+=]{40}`, ""},
	{"github_personal_access_token", "ghp_", `ghp_[A-Za-z0-9]{36}`, ""},
	{"github_oauth", "gho_", `gho_[A-Za-z0-9]{36}`, ""},
	{"private_key", "-----BEGIN", `-----BEGIN[A-Z ]+PRIVATE KEY-----`, ""},
	{"private_key_path", ".pem", `[-\w/.]+\.pem\b`, ""},
	{"jwt", "eyJ", `eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`, ""},
	{"slack_token", "xox", `xox[baprs]-[0-9A-Za-z-]{10,}`, ""},
	{"visa", "", `\b4[0-9]{12}(?:[0-9]{3})?\b`, ""},
	{"mastercard", "", `\b5[1-5][0-9]{14}\b`, ""},
	{"amex", "", `\b3[47][0-9]{13}\b`, ""},
	{"credit_card", "", `\b[0-9]{4}[- ]?[0-9]{4}[- ]?[0-9]{4}[- ]?[0-9]{4}\b`, ""},
	{"generic_db_password", "DB_PASSWORD", `DB_PASSWORD["'\s:=]+[^\s"']{4,}`, ""},
	{"email", "@", `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`, ""},
	{"ipv4", ".", `\b[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\.[0-9]{1,3}\b`, ""},
	{"ssn", "", `\b[0-9]{3}-[0-9]{2}-[0-9]{4}\b`, ""},
}

// hotNames is the ordered list of pattern names eligible for the hot
// automaton, highest match-probability first. Build consults this list
// directly (patterns_build's hot_names[] in the original); only the
// first HotAutomatonBudget names that resolve to a real, literal-bearing
// pattern are added.
var hotNames = []string{
	"password_value",
	"secret_value",
	"api_key_value",
	"token_value",
	"credential_value",
	"aws_access_key",
	"github_personal_access_token",
	"email",
	"generic_api_key",
	"generic_api_secret",
	"generic_auth_token",
	"bearer_token",
	"generic_password",
	"generic_secret_key",
	"visa",
	"mastercard",
	"amex",
	"ssn",
	"private_key_path",
	"generic_db_password",
}

// sentinelTokens is the fixed, curated token list for the sentinel
// automaton: discriminative substrings across the credential/PII/payment
// families this module targets, plus the HIPAA/PCI-DSS/GDPR/SOC2
// compliance families carried over from the original's sentinels[] table
// (see SPEC_FULL.md §6).
var sentinelTokens = []string{
	// Core secrets
	"password", "secret", "token", "AKIA", "ghp_", "sk_live_",
	"postgres://", "mongodb://", "-----BEGIN", "xoxb-", "eyJ", "Bearer",
	"api_key", "credential", "key",
	// HIPAA
	"MRN", "NPI", "diagnosis", "patient", "beneficiary", "ICD", "glucose",
	"A1C", "blood", "heart_rate", "encounter", "prescription", "Rx",
	// PCI-DSS
	"cardholder", "%B", "PIN", "track", "card_number", "cvv", "merchant",
	// GDPR
	"IBAN", "NINO", "DNI", "NIE", "INSEE", "Steuernummer", "codice_fiscale",
	"driving_licen",
	// SOC2
	"audit_id", "session_id", "role", "permission", "acl", "privilege",
	"encryption_key", "signing_key", "master_key", "mfa", "totp",
	"recovery_code", "kms",
}

// AddDefaults adds every pattern in the built-in catalog to s. It is the
// Go equivalent of patterns_add_defaults; callers that want only a subset
// of the catalog should call Add directly instead.
func AddDefaults(s *Set) error {
	for _, d := range defaultCatalog {
		var literal []byte
		if d.literal != "" {
			literal = []byte(d.literal)
		}
		var replacement []byte
		if d.replacement != "" {
			replacement = []byte(d.replacement)
		}
		if err := s.Add(d.name, literal, d.regex, replacement); err != nil {
			return err
		}
	}
	return nil
}
