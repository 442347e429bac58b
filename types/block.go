package types

// BlockVerified is published once the light client has verified a block.
// Block numbers are expected to be non-decreasing but consumers must not rely
// on it.
type BlockVerified struct {
	BlockNum uint32 `json:"block_num"`
}
