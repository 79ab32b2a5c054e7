package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"

	"klondike/internal/app"
	"klondike/internal/codec"
	"klondike/internal/domain"
	"klondike/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// gameDeps bundles everything a game RPC needs. Built per call; all state
// lives in storage.
type gameDeps struct {
	svc      *app.Service
	saves    ports.SavePort
	stats    ports.StatsPort
	board    ports.LeaderboardPort
	receipts *app.ReceiptService
	logger   runtime.Logger
}

func newGameDeps(ctx context.Context, logger runtime.Logger, nk runtime.NakamaModule) gameDeps {
	return gameDeps{
		svc:      app.NewService(nil),
		saves:    NewNakamaSaveAdapter(nk),
		stats:    NewNakamaStatsAdapter(nk),
		board:    NewNakamaLeaderboardAdapter(nk),
		receipts: receiptServiceFromEnv(ctx, logger),
		logger:   logger,
	}
}

// gameResponse is the envelope every game RPC returns. Engine rejections
// are ordinary ok:false responses; the gRPC error path is reserved for
// malformed requests and infrastructure failures.
type gameResponse struct {
	OK     bool      `json:"ok"`
	Error  string    `json:"error,omitempty"`
	Events []string  `json:"events,omitempty"`
	Game   *gameView `json:"game,omitempty"`
	Win    *winView  `json:"win,omitempty"`
}

// winView rides along when a move completes the game. The seed becomes
// public once the game is over so the win can be audited.
type winView struct {
	Seed    int64  `json:"seed,string"`
	Score   int    `json:"score"`
	Moves   int    `json:"moves"`
	Receipt string `json:"receipt,omitempty"`
}

// moveRequest names the piles by wire token: "s", "w", "t0".."t6",
// "f0".."f3". A nil index means the top card of the source pile.
type moveRequest struct {
	From  string `json:"from"`
	Index *int   `json:"index,omitempty"`
	To    string `json:"to"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	handlers := map[string]func(context.Context, runtime.Logger, *sql.DB, runtime.NakamaModule, string) (string, error){
		RpcNewGame:       rpcNewGame,
		RpcDraw:          rpcDraw,
		RpcMove:          rpcMove,
		RpcUndo:          rpcUndo,
		RpcState:         rpcState,
		RpcAbandon:       rpcAbandon,
		RpcSubmitReplay:  rpcSubmitReplay,
		RpcVerifyReceipt: rpcVerifyReceipt,
		RpcStats:         rpcStats,
	}
	for id, handler := range handlers {
		if err := initializer.RegisterRpc(id, handler); err != nil {
			return err
		}
	}
	return nil
}

func rpcNewGame(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return newGameOp(ctx, newGameDeps(ctx, logger, nk))
}

func rpcDraw(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return drawOp(ctx, newGameDeps(ctx, logger, nk))
}

func rpcMove(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return moveOp(ctx, newGameDeps(ctx, logger, nk), payload)
}

func rpcUndo(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return undoOp(ctx, newGameDeps(ctx, logger, nk))
}

func rpcState(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return stateOp(ctx, newGameDeps(ctx, logger, nk))
}

func rpcAbandon(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return abandonOp(ctx, newGameDeps(ctx, logger, nk))
}

// newGameOp deals a fresh game and stores it as the caller's current save.
// Discarding an unfinished game counts as a loss, same as the abandon RPC.
func newGameOp(ctx context.Context, d gameDeps) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}

	recordDiscardedGame(ctx, d, userID)

	game, events := d.svc.NewGame()
	snap := game.Snapshot()
	if _, err := d.saves.Save(ctx, userID, codec.Encode(snap), ports.VersionAny); err != nil {
		d.logger.Error("New game save failed for user %s: %v", userID, err)
		return "", runtime.NewError("Failed to store game", 13)
	}

	return marshalPayload(gameResponse{
		OK:     true,
		Events: eventKinds(events),
		Game:   snapshotView(snap),
	})
}

func drawOp(ctx context.Context, d gameDeps) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}

	game, version, err := loadGame(ctx, d, userID)
	if err != nil {
		return loadFailure(d, userID, err)
	}

	events, drawErr := d.svc.Draw(game)
	if drawErr != nil {
		return rejected(game, drawErr)
	}

	snap := game.Snapshot()
	if err := persistGame(ctx, d, userID, snap, version); err != nil {
		return "", err
	}

	return marshalPayload(gameResponse{
		OK:     true,
		Events: eventKinds(events),
		Game:   snapshotView(snap),
	})
}

func moveOp(ctx context.Context, d gameDeps, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}

	var req moveRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", 3)
	}
	source, err := app.ParseRef(req.From)
	if err != nil {
		return "", runtime.NewError("Invalid source pile", 3)
	}
	target, err := app.ParseRef(req.To)
	if err != nil {
		return "", runtime.NewError("Invalid target pile", 3)
	}

	game, version, err := loadGame(ctx, d, userID)
	if err != nil {
		return loadFailure(d, userID, err)
	}

	// Single-card moves dominate, so the index defaults to the top card.
	index := pileSize(game.Snapshot(), source) - 1
	if req.Index != nil {
		index = *req.Index
	}

	events, moveErr := d.svc.Transfer(game, source, index, target)
	if moveErr != nil {
		return rejected(game, moveErr)
	}

	snap := game.Snapshot()
	resp := gameResponse{
		OK:     true,
		Events: eventKinds(events),
		Game:   snapshotView(snap),
	}

	if game.IsWon() {
		// A won game is terminal on the server: reward it and clear
		// the save instead of persisting a state with no legal moves.
		resp.Win = d.finishWin(ctx, userID, callerUsername(ctx), game)
	} else if err := persistGame(ctx, d, userID, snap, version); err != nil {
		return "", err
	}

	return marshalPayload(resp)
}

func undoOp(ctx context.Context, d gameDeps) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}

	game, version, err := loadGame(ctx, d, userID)
	if err != nil {
		return loadFailure(d, userID, err)
	}

	events, undoErr := d.svc.Undo(game)
	if undoErr != nil {
		return rejected(game, undoErr)
	}

	snap := game.Snapshot()
	if err := persistGame(ctx, d, userID, snap, version); err != nil {
		return "", err
	}

	return marshalPayload(gameResponse{
		OK:     true,
		Events: eventKinds(events),
		Game:   snapshotView(snap),
	})
}

func stateOp(ctx context.Context, d gameDeps) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}

	game, _, err := loadGame(ctx, d, userID)
	if err != nil {
		return loadFailure(d, userID, err)
	}

	return marshalPayload(gameResponse{
		OK:   true,
		Game: snapshotView(game.Snapshot()),
	})
}

func abandonOp(ctx context.Context, d gameDeps) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}

	game, _, err := loadGame(ctx, d, userID)
	if err != nil {
		return loadFailure(d, userID, err)
	}

	if game.Moves() > 0 && !game.IsWon() {
		res := ports.Result{Seed: game.Seed(), Score: game.Score(), Moves: game.Moves(), Won: false}
		if err := d.stats.RecordResult(ctx, userID, res); err != nil {
			d.logger.Error("Abandoned game not recorded for user %s: %v", userID, err)
		}
	}

	if err := d.saves.Delete(ctx, userID); err != nil {
		d.logger.Error("Save delete failed for user %s: %v", userID, err)
		return "", runtime.NewError("Failed to delete game", 13)
	}

	return marshalPayload(gameResponse{OK: true})
}

// loadGame restores the caller's current game from storage.
func loadGame(ctx context.Context, d gameDeps, userID string) (*domain.Game, string, error) {
	saved, err := d.saves.Load(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	snap, err := codec.Decode(saved.Blob)
	if err != nil {
		return nil, "", err
	}
	game, err := domain.Restore(snap)
	if err != nil {
		return nil, "", err
	}
	return game, saved.Version, nil
}

// loadFailure renders a load error: a missing save is an ordinary ok:false
// response, anything else is an infrastructure failure.
func loadFailure(d gameDeps, userID string, err error) (string, error) {
	if errors.Is(err, ports.ErrNoSave) {
		return marshalPayload(gameResponse{OK: false, Error: errKindNoGame})
	}
	d.logger.Error("Game load failed for user %s: %v", userID, err)
	return "", runtime.NewError("Failed to load game", 13)
}

// persistGame writes the game back under the version it was loaded with.
func persistGame(ctx context.Context, d gameDeps, userID string, snap domain.Snapshot, version string) error {
	_, err := d.saves.Save(ctx, userID, codec.Encode(snap), version)
	if err == nil {
		return nil
	}
	if errors.Is(err, ports.ErrVersionConflict) {
		return runtime.NewError("Game state changed concurrently", 10)
	}
	d.logger.Error("Game save failed for user %s: %v", userID, err)
	return runtime.NewError("Failed to store game", 13)
}

// rejected renders an engine rejection. The game is untouched, so the
// response carries the current state along with the error kind.
func rejected(game *domain.Game, err error) (string, error) {
	return marshalPayload(gameResponse{
		OK:    false,
		Error: errorKind(err),
		Game:  snapshotView(game.Snapshot()),
	})
}

// recordDiscardedGame folds an in-progress save that is about to be
// replaced into the stats as a loss. Best-effort: a failure never blocks
// the new deal.
func recordDiscardedGame(ctx context.Context, d gameDeps, userID string) {
	saved, err := d.saves.Load(ctx, userID)
	if errors.Is(err, ports.ErrNoSave) {
		return
	}
	if err != nil {
		d.logger.Warn("Discard check failed for user %s: %v", userID, err)
		return
	}
	snap, err := codec.Decode(saved.Blob)
	if err != nil || snap.Status != domain.InProgress || snap.Moves == 0 {
		return
	}

	res := ports.Result{Seed: snap.Seed, Score: snap.Score, Moves: snap.Moves, Won: false}
	if err := d.stats.RecordResult(ctx, userID, res); err != nil {
		d.logger.Warn("Discarded game not recorded for user %s: %v", userID, err)
	}
}

// finishWin records and rewards a server-verified win, then clears the
// finished save. Reward failures degrade to a missing receipt rather than
// failing the winning move.
func (d gameDeps) finishWin(ctx context.Context, userID, username string, game *domain.Game) *winView {
	res := ports.Result{Seed: game.Seed(), Score: game.Score(), Moves: game.Moves(), Won: true}
	if err := d.stats.RecordResult(ctx, userID, res); err != nil {
		d.logger.Error("Win not recorded for user %s: %v", userID, err)
	}

	metadata := map[string]interface{}{
		"seed":  strconv.FormatInt(res.Seed, 10),
		"moves": res.Moves,
	}
	if err := d.board.Submit(ctx, userID, username, int64(res.Score), metadata); err != nil {
		d.logger.Error("Leaderboard submit failed for user %s: %v", userID, err)
	}

	win := &winView{Seed: res.Seed, Score: res.Score, Moves: res.Moves}
	receipt, err := d.receipts.Issue(userID, app.ReplayResult{Seed: res.Seed, Score: res.Score, Moves: res.Moves, Won: true})
	if err != nil {
		d.logger.Error("Receipt issue failed for user %s: %v", userID, err)
	} else {
		win.Receipt = receipt
	}

	if err := d.saves.Delete(ctx, userID); err != nil {
		d.logger.Warn("Finished save not deleted for user %s: %v", userID, err)
	}
	return win
}

func callerID(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	if !ok || userID == "" {
		return "", runtime.NewError("No user ID in context", 16)
	}
	return userID, nil
}

func callerUsername(ctx context.Context) string {
	username, _ := ctx.Value(runtime.RUNTIME_CTX_USERNAME).(string)
	return username
}

func marshalPayload(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", runtime.NewError("Failed to marshal response", 13)
	}
	return string(b), nil
}
