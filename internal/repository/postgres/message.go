package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/chatline/chatline-server/internal/model"
)

var _ model.MessageStore = (*MessageRepository)(nil)

type MessageRepository struct {
	db *Connection
}

func NewMessageRepository(db *Connection) *MessageRepository {
	return &MessageRepository{
		db: db,
	}
}

func (r *MessageRepository) Create(ctx context.Context, message model.Message) (model.Message, error) {
	query := `INSERT INTO messages (id, sender_id, receiver_id, text, image_url)
			  VALUES ($1, $2, $3, $4, $5)
			  RETURNING id, seq, sender_id, receiver_id, text, image_url, created_at`

	var savedMessage model.Message
	err := r.db.QueryRow(ctx, query,
		message.ID, message.SenderID, message.ReceiverID, message.Text, message.ImageURL,
	).Scan(
		&savedMessage.ID, &savedMessage.Seq, &savedMessage.SenderID, &savedMessage.ReceiverID,
		&savedMessage.Text, &savedMessage.ImageURL, &savedMessage.CreatedAt,
	)
	if err != nil {
		return model.Message{}, fmt.Errorf("failed to create message: %w", err)
	}

	return savedMessage, nil
}

func (r *MessageRepository) GetConversation(ctx context.Context, userID, peerID uuid.UUID) ([]model.Message, error) {
	query := `
		SELECT id, seq, sender_id, receiver_id, text, image_url, created_at
		FROM messages
		WHERE (sender_id = $1 AND receiver_id = $2)
		   OR (sender_id = $2 AND receiver_id = $1)
		ORDER BY created_at, seq`

	rows, err := r.db.Query(ctx, query, userID, peerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var message model.Message
		err := rows.Scan(
			&message.ID, &message.Seq, &message.SenderID, &message.ReceiverID,
			&message.Text, &message.ImageURL, &message.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan message row: %w", err)
		}
		messages = append(messages, message)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read message rows: %w", err)
	}

	return messages, nil
}

func (r *MessageRepository) DeleteConversations(ctx context.Context, userID uuid.UUID, peerIDs []uuid.UUID) (int64, error) {
	query := `
		DELETE FROM messages
		WHERE (sender_id = $1 AND receiver_id = ANY($2::uuid[]))
		   OR (receiver_id = $1 AND sender_id = ANY($2::uuid[]))`

	cmd, err := r.db.Exec(ctx, query, userID, peerIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to delete conversations: %w", err)
	}

	return cmd.RowsAffected(), nil
}
