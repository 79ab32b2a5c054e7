package nakama

// Nakama RPC ids exposed to clients.
const (
	RpcNewGame       = "klondike_new_game"
	RpcDraw          = "klondike_draw"
	RpcMove          = "klondike_move"
	RpcUndo          = "klondike_undo"
	RpcState         = "klondike_state"
	RpcAbandon       = "klondike_abandon"
	RpcSubmitReplay  = "klondike_submit_replay"
	RpcVerifyReceipt = "klondike_verify_receipt"
	RpcStats         = "klondike_stats"
)

// Storage locations. Values live under the owning user with client access
// locked down; all reads and writes go through the server runtime.
const (
	saveCollection = "klondike_saves"
	saveKey        = "current_v1"

	statsCollection = "klondike_stats"
	statsKey        = "aggregate_v1"
)

// Error kinds returned in ok:false responses. These are stable wire strings
// for clients to branch on; the gRPC error path is reserved for malformed
// requests and infrastructure failures.
const (
	errKindNoGame          = "no_game"
	errKindNothingToDraw   = "nothing_to_draw"
	errKindNothingToUndo   = "nothing_to_undo"
	errKindSourceEmpty     = "source_empty"
	errKindIndexOutOfRange = "index_out_of_range"
	errKindInvalidSequence = "invalid_sequence"
	errKindIllegalMove     = "illegal_move"
	errKindReplayRejected  = "replay_rejected"
	errKindReplayTooLong   = "replay_too_long"
	errKindInvalidReceipt  = "invalid_receipt"
	errKindInternal        = "internal"
)
