package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"klondike/internal/app"
	"klondike/internal/config"
	"klondike/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// submitRequest carries the full journal of one offline game.
type submitRequest struct {
	Journal app.Journal `json:"journal"`
}

// submitResponse reports the verified outcome. A journal that fails
// verification is an ordinary ok:false response; nothing is recorded for it.
type submitResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
	Score   int    `json:"score,omitempty"`
	Moves   int    `json:"moves,omitempty"`
	Won     bool   `json:"won,omitempty"`
	Receipt string `json:"receipt,omitempty"`
}

type verifyReceiptRequest struct {
	Receipt string `json:"receipt"`
}

type receiptResponse struct {
	OK      bool         `json:"ok"`
	Error   string       `json:"error,omitempty"`
	Receipt *receiptView `json:"receipt,omitempty"`
}

type receiptView struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Seed      int64  `json:"seed,string"`
	Score     int    `json:"score"`
	Moves     int    `json:"moves"`
	ExpiresAt string `json:"expires_at"`
}

func rpcSubmitReplay(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return submitOp(ctx, newGameDeps(ctx, logger, nk), payload)
}

func rpcVerifyReceipt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	return verifyReceiptOp(newGameDeps(ctx, logger, nk), payload)
}

// submitOp verifies a journal by replaying it, folds the outcome into the
// caller's stats and, for wins, writes the leaderboard and issues a receipt.
// The server never trusts a reported score: everything comes out of the
// replay.
func submitOp(ctx context.Context, d gameDeps, payload string) (string, error) {
	userID, err := callerID(ctx)
	if err != nil {
		return "", err
	}

	var req submitRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil {
		return "", runtime.NewError("Invalid payload", 3)
	}

	verified, verifyErr := app.Verify(req.Journal, config.MaxReplayOps())
	if verifyErr != nil {
		kind := errKindReplayRejected
		if errors.Is(verifyErr, app.ErrReplayTooLong) {
			kind = errKindReplayTooLong
		}
		d.logger.Warn("Replay rejected for user %s: %v", userID, verifyErr)
		return marshalPayload(submitResponse{OK: false, Error: kind})
	}

	// The journal rides along with the result as an audit trail.
	journalJSON, _ := json.Marshal(req.Journal)
	res := ports.Result{
		Seed:    verified.Seed,
		Score:   verified.Score,
		Moves:   verified.Moves,
		Won:     verified.Won,
		Journal: string(journalJSON),
	}
	if err := d.stats.RecordResult(ctx, userID, res); err != nil {
		d.logger.Error("Replay result not recorded for user %s: %v", userID, err)
		return "", runtime.NewError("Failed to record result", 13)
	}

	resp := submitResponse{
		OK:    true,
		Score: verified.Score,
		Moves: verified.Moves,
		Won:   verified.Won,
	}
	if verified.Won {
		metadata := map[string]interface{}{
			"seed":  strconv.FormatInt(verified.Seed, 10),
			"moves": verified.Moves,
		}
		if err := d.board.Submit(ctx, userID, callerUsername(ctx), int64(verified.Score), metadata); err != nil {
			d.logger.Error("Leaderboard submit failed for user %s: %v", userID, err)
		}
		receipt, err := d.receipts.Issue(userID, verified)
		if err != nil {
			d.logger.Error("Receipt issue failed for user %s: %v", userID, err)
		} else {
			resp.Receipt = receipt
		}
	}

	return marshalPayload(resp)
}

// verifyReceiptOp checks a receipt token and returns its content. No caller
// identity is required: receipts are bearer proofs meant to be checked by
// third parties.
func verifyReceiptOp(d gameDeps, payload string) (string, error) {
	var req verifyReceiptRequest
	if err := json.Unmarshal([]byte(payload), &req); err != nil || req.Receipt == "" {
		return "", runtime.NewError("Invalid payload", 3)
	}

	receipt, err := d.receipts.Verify(req.Receipt)
	if err != nil {
		return marshalPayload(receiptResponse{OK: false, Error: errKindInvalidReceipt})
	}

	return marshalPayload(receiptResponse{
		OK: true,
		Receipt: &receiptView{
			ID:        receipt.ID,
			UserID:    receipt.UserID,
			Seed:      receipt.Seed,
			Score:     receipt.Score,
			Moves:     receipt.Moves,
			ExpiresAt: receipt.ExpiresAt.UTC().Format(time.RFC3339),
		},
	})
}

// receiptServiceFromEnv builds the receipt signer from runtime env vars,
// falling back to test defaults when they are unset.
func receiptServiceFromEnv(ctx context.Context, logger runtime.Logger) *app.ReceiptService {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	secret := env["klondike_receipt_secret"]
	issuer := env["klondike_receipt_issuer"]

	if secret == "" || issuer == "" {
		secret = "test-secret"
		issuer = "klondike"
		logger.Warn("Receipt credentials missing from env, using test defaults.")
	}

	return app.NewReceiptService(secret, issuer, config.ReceiptTTL())
}
