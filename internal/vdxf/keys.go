package vdxf

// VDXF keys used by the timestamp-proof content map. These are the chain's
// namespaced identifiers and must match what wallets and other readers of the
// proof schema expect; they are opaque to this service.
const (
	// TimestampProofKey is the outer content-multimap key all timestamp
	// proof entries are stored under.
	TimestampProofKey = "iQcQnNY4dZskeSbcrxNyhBGYAqe23bmwNy"

	SHA256Key      = "iKtM5y4KH4sUSXDDV7ppKBRz6p6vLSZ6cH"
	TitleKey       = "iEwB7FyusYyWbgigaYPgvhzLV8Cak9PpJ5"
	DescriptionKey = "iHbuMqykC2DM9sHVbk9Yw2cQcvHhvibTt3"
	FilenameKey    = "i5v3h9FWVdRvbQmBXpfgSMkxyrAkJdLCUV"
	FilesizeKey    = "i9duFPRnVGBKkL9hcDdMmMUmDoQTLDA8Fr"
)
