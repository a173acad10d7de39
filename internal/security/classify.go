package security

import "github.com/sells-group/wifisurvey/internal/model"

// Classify maps a capability string to a SecurityType by first-match priority:
// WPA3, WPA2, WPA, WEP, WPS, then Open for a bare ESS. Anything else is Unknown.
//
// Classify only looks for the protocol names. Describe additionally treats
// SAE as WPA3 and RSN as WPA2; callers see both results, so the predicates are
// kept separate. A capability string that names only RSN or SAE, such as
// "[RSN-PSK-CCMP][ESS]", therefore classifies as Open and assesses as High
// risk.
func Classify(raw string) model.SecurityType {
	c := normalize(raw)
	switch {
	case c.has(tokenWPA3):
		return model.SecurityWPA3
	case c.has(tokenWPA2):
		return model.SecurityWPA2
	case c.has(tokenWPA):
		return model.SecurityWPA
	case c.has(tokenWEP):
		return model.SecurityWEP
	case c.has(tokenWPS):
		return model.SecurityWPS
	case c.has(tokenESS):
		return model.SecurityOpen
	default:
		return model.SecurityUnknown
	}
}

var encryptionLabels = [][2]string{
	{tokenCCMP, "AES"},
	{tokenTKIP, "TKIP"},
	{tokenWEP, "WEP"},
}

var authenticationLabels = [][2]string{
	{tokenPSK, "PSK"},
	{tokenEAP, "EAP"},
	{tokenSAE, "SAE"},
	{tokenOWE, "OWE"},
}

// Describe returns the detailed security breakdown of a capability string.
// Encryption and authentication methods are non-exclusive and listed in a
// fixed order.
func Describe(raw string) model.SecurityInfo {
	c := normalize(raw)

	isWPA3 := c.has(tokenWPA3, tokenSAE)
	isWPA2 := c.has(tokenWPA2, tokenRSN)
	isWPA := c.has(tokenWPA) && !c.has(tokenWPA2, tokenWPA3)
	isWEP := c.has(tokenWEP)
	hasWPS := c.has(tokenWPS)
	isOpen := !isWPA3 && !isWPA2 && !isWPA && !isWEP && c.has(tokenESS)

	st := model.SecurityUnknown
	switch {
	case isWPA3:
		st = model.SecurityWPA3
	case isWPA2:
		st = model.SecurityWPA2
	case isWPA:
		st = model.SecurityWPA
	case isWEP:
		st = model.SecurityWEP
	case hasWPS:
		st = model.SecurityWPS
	case isOpen:
		st = model.SecurityOpen
	}

	return model.SecurityInfo{
		SecurityType:          st,
		HasWPS:                hasWPS,
		EncryptionMethods:     c.collect(encryptionLabels),
		AuthenticationMethods: c.collect(authenticationLabels),
	}
}
