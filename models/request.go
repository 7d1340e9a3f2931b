package models

import "fmt"

// RequestKind identifies the kind of operation a key server is being asked
// to authorize. The set is closed: policy files naming any other kind are
// rejected at load time.
type RequestKind string

const (
	RequestDecrypt          RequestKind = "decrypt"
	RequestSearch           RequestKind = "search"
	RequestCreateProfile    RequestKind = "create_profile"
	RequestActivateLocation RequestKind = "activate_location"
	RequestCreateLocation   RequestKind = "create_location"
	RequestRename           RequestKind = "rename"
	RequestSecureExport     RequestKind = "secure_export"
)

// requestKinds lists every known kind in a stable order.
var requestKinds = []RequestKind{
	RequestDecrypt,
	RequestSearch,
	RequestCreateProfile,
	RequestActivateLocation,
	RequestCreateLocation,
	RequestRename,
	RequestSecureExport,
}

// RequestKinds returns all known request kinds.
func RequestKinds() []RequestKind {
	out := make([]RequestKind, len(requestKinds))
	copy(out, requestKinds)
	return out
}

// ParseRequestKind validates a request kind name from a policy document or
// an API payload. Unknown names are configuration errors, never runtime data.
func ParseRequestKind(s string) (RequestKind, error) {
	for _, k := range requestKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown request kind %q", s)
}

// ProfileInfo identifies the requesting profile. The id is an opaque byte
// identity; the words are the profile's human mnemonic, carried through for
// logging and quota keying only.
type ProfileInfo struct {
	ProfileID    []byte
	ProfileWords []string
}

// MetaInfo is one piece of authenticated metadata associated with the
// protected data, typically the full mount path of a file. Complete
// distinguishes fully verified metadata from partial or untrusted metadata.
type MetaInfo struct {
	Meta     string
	Complete bool
}

// ApprovalRequest describes a single request for authorization. It is
// created by the caller per incoming request and is read-only to the engine.
type ApprovalRequest struct {
	Kind            RequestKind
	DeviceID        []byte
	Profile         ProfileInfo
	CryptographicID []byte
	AuthMeta        []MetaInfo
}
