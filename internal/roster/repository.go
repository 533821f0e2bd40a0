package roster

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository handles group, membership and guest persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new roster repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateGroup inserts a new group
func (r *Repository) CreateGroup(ctx context.Context, req *CreateGroupRequest) (*Group, error) {
	query := `
		INSERT INTO groups (name, description, currency)
		VALUES ($1, $2, $3)
		RETURNING id, name, description, currency, created_at
	`

	group := &Group{}
	err := r.db.QueryRowContext(ctx, query, req.Name, req.Description, req.Currency).Scan(
		&group.ID,
		&group.Name,
		&group.Description,
		&group.Currency,
		&group.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	return group, nil
}

// GetGroupByID retrieves a group by its ID
func (r *Repository) GetGroupByID(ctx context.Context, id int64) (*Group, error) {
	query := `SELECT id, name, description, currency, created_at FROM groups WHERE id = $1`

	group := &Group{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&group.ID,
		&group.Name,
		&group.Description,
		&group.Currency,
		&group.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	return group, nil
}

// AddMember attaches a user to a group
func (r *Repository) AddMember(ctx context.Context, groupID, userID int64) error {
	query := `
		INSERT INTO group_members (group_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (group_id, user_id) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, groupID, userID); err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// ListMembers retrieves all member participants of a group
func (r *Repository) ListMembers(ctx context.Context, groupID int64) ([]*Participant, error) {
	query := `
		SELECT u.id, u.username
		FROM group_members gm
		JOIN users u ON gm.user_id = u.id
		WHERE gm.group_id = $1
		ORDER BY gm.joined_at, u.id
	`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	defer rows.Close()

	var participants []*Participant
	for rows.Next() {
		p := &Participant{ParticipantRef: ParticipantRef{Kind: KindUser}}
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		participants = append(participants, p)
	}

	return participants, rows.Err()
}

// CreateGuest inserts a new guest into a group
func (r *Repository) CreateGuest(ctx context.Context, groupID int64, name string) (*Guest, error) {
	query := `
		INSERT INTO guests (group_id, name)
		VALUES ($1, $2)
		RETURNING id, group_id, name, created_at
	`

	guest := &Guest{}
	err := r.db.QueryRowContext(ctx, query, groupID, name).Scan(
		&guest.ID,
		&guest.GroupID,
		&guest.Name,
		&guest.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create guest: %w", err)
	}

	return guest, nil
}

// ListGuests retrieves all guest participants of a group
func (r *Repository) ListGuests(ctx context.Context, groupID int64) ([]*Participant, error) {
	query := `SELECT id, name FROM guests WHERE group_id = $1 ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list guests: %w", err)
	}
	defer rows.Close()

	var participants []*Participant
	for rows.Next() {
		p := &Participant{ParticipantRef: ParticipantRef{Kind: KindGuest}}
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("failed to scan guest: %w", err)
		}
		participants = append(participants, p)
	}

	return participants, rows.Err()
}
