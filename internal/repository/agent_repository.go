package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/polisure/certprep-backend/internal/model"
)

var ErrDuplicateEmpID = errors.New("agent with this employee ID already exists")

// AgentRepository handles agent data access.
type AgentRepository struct {
	pool *pgxpool.Pool
}

// NewAgentRepository creates a new AgentRepository.
func NewAgentRepository(pool *pgxpool.Pool) *AgentRepository {
	return &AgentRepository{pool: pool}
}

// GetByID retrieves an agent by ID.
func (r *AgentRepository) GetByID(ctx context.Context, id int) (*model.Agent, error) {
	a := &model.Agent{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, emp_id, name, department, password_hash, is_admin, created_at
		 FROM agents WHERE id = $1`, id,
	).Scan(&a.ID, &a.EmpID, &a.Name, &a.Department, &a.PasswordHash, &a.IsAdmin, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// GetByEmpID retrieves an agent by their unique employee ID.
func (r *AgentRepository) GetByEmpID(ctx context.Context, empID string) (*model.Agent, error) {
	a := &model.Agent{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, emp_id, name, department, password_hash, is_admin, created_at
		 FROM agents WHERE emp_id = $1`, empID,
	).Scan(&a.ID, &a.EmpID, &a.Name, &a.Department, &a.PasswordHash, &a.IsAdmin, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// Create inserts a new agent.
func (r *AgentRepository) Create(ctx context.Context, a *model.Agent) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO agents (emp_id, name, department, password_hash, is_admin)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		a.EmpID, a.Name, a.Department, a.PasswordHash, a.IsAdmin,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrDuplicateEmpID
		}
		return err
	}
	return nil
}

// List retrieves all agents ordered by employee ID.
func (r *AgentRepository) List(ctx context.Context) ([]model.Agent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, emp_id, name, department, password_hash, is_admin, created_at
		 FROM agents ORDER BY emp_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agents []model.Agent
	for rows.Next() {
		var a model.Agent
		if err := rows.Scan(&a.ID, &a.EmpID, &a.Name, &a.Department, &a.PasswordHash, &a.IsAdmin, &a.CreatedAt); err != nil {
			return nil, err
		}
		agents = append(agents, a)
	}
	return agents, rows.Err()
}
