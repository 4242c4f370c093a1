package storage

import "strings"

// TokenInfo describes the shape of a configured token without revealing it.
type TokenInfo struct {
	Format     string `json:"format"`
	Type       string `json:"type"`
	StoreID    string `json:"storeId"`
	Length     int    `json:"length"`
	FirstChars string `json:"firstChars"`
	LastChars  string `json:"lastChars"`
	HadQuotes  bool   `json:"hadQuotes"`
}

// AnalyzeToken inspects raw as configured. Vercel Blob tokens look like
// vercel_blob_rw_<storeId>_<secret>.
func AnalyzeToken(raw string) TokenInfo {
	token := NormalizeToken(raw)
	info := TokenInfo{
		Format:    "unknown",
		Type:      "unknown",
		StoreID:   "unknown",
		Length:    len(token),
		HadQuotes: HasQuotes(raw),
	}
	if len(token) > 15 {
		info.FirstChars = token[:10] + "..."
		info.LastChars = "..." + token[len(token)-5:]
	} else {
		info.FirstChars = "..."
		info.LastChars = "..."
	}
	if parts := strings.Split(token, "_"); len(parts) >= 4 {
		info.Format = parts[0] + "_" + parts[1]
		info.Type = parts[2]
		info.StoreID = parts[3]
	}
	return info
}
