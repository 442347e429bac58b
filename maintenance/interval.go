package maintenance

// IsDue reports whether a task running every interval blocks fires on
// blockNumber. Block 0 is due for every interval. interval must be positive;
// types.StaticConfigParams.Validate guarantees that before a Maintenance is
// built.
func IsDue(blockNumber, interval uint32) bool {
	return blockNumber%interval == 0
}
