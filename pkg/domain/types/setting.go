package types

import "github.com/m-mizutani/goerr/v2"

// SettingKind declares how a setting value should be interpreted
type SettingKind string

const (
	SettingKindString  SettingKind = "string"
	SettingKindNumber  SettingKind = "number"
	SettingKindBoolean SettingKind = "boolean"
	SettingKindJSON    SettingKind = "json"
)

// Well-known setting keys. owner.* settings feed placeholder hydration;
// terminal.banner is derived from them and must not be edited directly.
const (
	SettingKeyOwnerName = "owner.name"
	SettingKeyOwnerRole = "owner.role"
	SettingKeyBanner    = "terminal.banner"
)

// IsValid checks if the setting kind is valid
func (k SettingKind) IsValid() bool {
	switch k {
	case SettingKindString,
		SettingKindNumber,
		SettingKindBoolean,
		SettingKindJSON:
		return true
	default:
		return false
	}
}

// Validate returns an error for an unknown setting kind
func (k SettingKind) Validate() error {
	if !k.IsValid() {
		return goerr.New("invalid setting kind", goerr.V("kind", string(k)))
	}
	return nil
}

// String returns the string representation of the setting kind
func (k SettingKind) String() string {
	return string(k)
}
