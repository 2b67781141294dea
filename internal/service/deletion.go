package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/chatline/chatline-server/internal/apierrors"
	"github.com/chatline/chatline-server/internal/logger"
	"github.com/chatline/chatline-server/internal/model"
)

// DeletionResult reports exactly what one delete-chats run accomplished.
// AbsentPeerIDs lists requested peers that were not removed in this run,
// either because they were already gone or because their removal failed.
type DeletionResult struct {
	MessagesDeleted int64       `json:"deletedMessagesCount"`
	RemovedPeerIDs  []uuid.UUID `json:"deletedUserIds"`
	AbsentPeerIDs   []uuid.UUID `json:"absentUserIds"`
}

// DeleteChats removes the conversations between the acting user and every
// peer in peerIDs: the shared message logs are purged, the peers join the
// actor's hidden set, and the peer accounts are permanently deleted.
//
// Validation failures abort before any mutation. After that the workflow is
// best-effort: the three stores are mutated in order with no cross-store
// transaction, and a single peer's removal failure never stops the rest. A
// crash between the message purge and the peer removal leaves messages gone
// with the peer record still present; re-running the same call converges.
//
// Only the acting user's live connections are notified. The removed peer,
// even if online, learns about the deletion on its next fetch.
func (s *Chat) DeleteChats(ctx context.Context, actorID uuid.UUID, peerIDs []uuid.UUID) (DeletionResult, error) {
	run, err := newDeletionRun(actorID, peerIDs)
	if err != nil {
		return DeletionResult{}, err
	}

	if err := run.purgeMessages(ctx, s.messageStore); err != nil {
		return DeletionResult{}, err
	}
	if err := run.hidePeers(ctx, s.userStore); err != nil {
		return DeletionResult{}, err
	}
	run.removePeers(ctx, s.userStore, s.logger)

	s.notifier.Notify(ctx, actorID, model.EventChatsDeleted, model.ChatsDeletedEvent{
		DeletedUserIDs: run.result.RemovedPeerIDs,
	})

	return run.result, nil
}

// deletionRun is one pass of the deletion workflow with per-step result
// capture.
type deletionRun struct {
	actorID uuid.UUID
	peerIDs []uuid.UUID
	result  DeletionResult
}

func newDeletionRun(actorID uuid.UUID, peerIDs []uuid.UUID) (*deletionRun, error) {
	if actorID == uuid.Nil {
		return nil, apierrors.NewErrInvalidPeerList("missing acting user")
	}
	if len(peerIDs) == 0 {
		return nil, apierrors.NewErrInvalidPeerList("no chats selected")
	}

	seen := make(map[uuid.UUID]struct{}, len(peerIDs))
	deduped := make([]uuid.UUID, 0, len(peerIDs))
	for _, peerID := range peerIDs {
		if peerID == uuid.Nil {
			return nil, apierrors.NewErrInvalidPeerList("empty peer id")
		}
		if peerID == actorID {
			return nil, apierrors.NewErrInvalidPeerList("own identity in peer list")
		}
		if _, ok := seen[peerID]; ok {
			continue
		}
		seen[peerID] = struct{}{}
		deduped = append(deduped, peerID)
	}

	return &deletionRun{
		actorID: actorID,
		peerIDs: deduped,
		result: DeletionResult{
			RemovedPeerIDs: []uuid.UUID{},
			AbsentPeerIDs:  []uuid.UUID{},
		},
	}, nil
}

func (r *deletionRun) purgeMessages(ctx context.Context, store model.MessageStore) error {
	count, err := store.DeleteConversations(ctx, r.actorID, r.peerIDs)
	if err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	r.result.MessagesDeleted = count
	return nil
}

func (r *deletionRun) hidePeers(ctx context.Context, store model.UserStore) error {
	if err := store.AddHiddenPeers(ctx, r.actorID, r.peerIDs); err != nil {
		return fmt.Errorf("failed to hide peers: %w", err)
	}
	return nil
}

// removePeers deletes each peer account independently. A missing record or a
// store failure marks the peer as not removed and moves on; earlier steps
// are never rolled back.
func (r *deletionRun) removePeers(ctx context.Context, store model.UserStore, logger *logger.Logger) {
	for _, peerID := range r.peerIDs {
		err := store.Delete(ctx, peerID)
		switch {
		case err == nil:
			r.result.RemovedPeerIDs = append(r.result.RemovedPeerIDs, peerID)
		case errors.Is(err, model.ErrNotFound):
			r.result.AbsentPeerIDs = append(r.result.AbsentPeerIDs, peerID)
		default:
			r.result.AbsentPeerIDs = append(r.result.AbsentPeerIDs, peerID)
			logger.Error("failed to remove peer, continuing",
				"actor_id", r.actorID,
				"peer_id", peerID,
				"error", err)
		}
	}
}
