package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"
	"wellness-center/internal/domain/customer"
	"wellness-center/internal/domain/membership"
	"wellness-center/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const customerColumns = `id, name, phone, annual_revenue, total_visits, last_visit_date, complaint_count,
        membership_level, customer_status, risk_level, active, classified_at, created_at, updated_at`

type CustomerRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ customer.CustomerRepository = (*CustomerRepository)(nil)

func NewCustomerRepository(db DBPool, logger *slog.Logger) *CustomerRepository {
	if db == nil {
		panic("DBPool cannot be nil for CustomerRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewCustomerRepository, using default stderr handler")
	}
	return &CustomerRepository{
		db:     db,
		logger: logger.With("component", "CustomerRepository"),
	}
}

func (r *CustomerRepository) Save(ctx context.Context, cust *customer.Customer) error {
	if cust == nil {
		return fmt.Errorf("%w: customer cannot be nil", apperrors.ErrInvalidArgument)
	}
	if cust.CustomerID == 0 {
		return r.createCustomer(ctx, cust)
	}
	return r.updateCustomer(ctx, cust)
}

func (r *CustomerRepository) createCustomer(ctx context.Context, cust *customer.Customer) (err error) {
	defer observe("customer_insert", time.Now(), &err)
	logCtx := r.logger.With(slog.String("name", cust.Name))
	logCtx.InfoContext(ctx, "Attempting to insert new customer")

	query := `
        INSERT INTO customers (name, phone, annual_revenue, total_visits, last_visit_date, complaint_count,
            membership_level, customer_status, risk_level, active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
        RETURNING id, created_at, updated_at`

	err = r.db.QueryRow(ctx, query,
		cust.Name,
		nullableText(cust.Phone),
		cust.AnnualRevenue,
		cust.TotalVisits,
		cust.LastVisitDate,
		cust.ComplaintCount,
		string(cust.MembershipLevel),
		string(cust.CustomerStatus),
		string(cust.RiskLevel),
		cust.Active,
	).Scan(&cust.CustomerID, &cust.CreateDate, &cust.UpdatedAt)
	if err != nil {
		translatedErr := translateDBError(err, logCtx)
		if errors.Is(translatedErr, apperrors.ErrAlreadyExists) {
			logCtx.WarnContext(ctx, "Failed to insert customer due to unique constraint violation")
			return customer.ErrDuplicatePhone
		}
		logCtx.ErrorContext(ctx, "Failed to insert customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to insert customer: %w", apperrors.ErrDatabase, err)
	}

	logCtx.InfoContext(ctx, "Customer inserted successfully", slog.Int64("customerID", cust.CustomerID))
	return nil
}

func (r *CustomerRepository) updateCustomer(ctx context.Context, cust *customer.Customer) (err error) {
	defer observe("customer_update", time.Now(), &err)
	logCtx := r.logger.With(slog.Int64("customerID", cust.CustomerID))
	logCtx.InfoContext(ctx, "Attempting to update customer")

	query := `
        UPDATE customers
        SET name = $1,
            phone = $2,
            active = $3,
            updated_at = NOW()
        WHERE id = $4`

	cmdTag, err := r.db.Exec(ctx, query,
		cust.Name,
		nullableText(cust.Phone),
		cust.Active,
		cust.CustomerID,
	)
	if err != nil {
		translatedErr := translateDBError(err, logCtx)
		if errors.Is(translatedErr, apperrors.ErrAlreadyExists) {
			logCtx.WarnContext(ctx, "Failed to update customer due to unique constraint violation")
			return customer.ErrDuplicatePhone
		}
		logCtx.ErrorContext(ctx, "Failed to update customer", slog.Any("error", err))
		return fmt.Errorf("%w: failed to update customer: %w", apperrors.ErrDatabase, err)
	}

	if cmdTag.RowsAffected() == 0 {
		logCtx.WarnContext(ctx, "Update affected zero rows, customer likely not found")
		return customer.ErrNotFound
	}

	logCtx.InfoContext(ctx, "Customer updated successfully")
	return nil
}

func (r *CustomerRepository) FindByID(ctx context.Context, customerID int64) (cust *customer.Customer, err error) {
	defer observe("customer_find_by_id", time.Now(), &err)
	logCtx := r.logger.With(slog.Int64("customerID", customerID))
	logCtx.DebugContext(ctx, "Attempting to find customer by ID")

	query := `SELECT ` + customerColumns + `
        FROM customers
        WHERE id = $1`

	cust, err = scanCustomer(r.db.QueryRow(ctx, query, customerID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			logCtx.WarnContext(ctx, "Customer not found")
			return nil, customer.ErrNotFound
		}
		logCtx.ErrorContext(ctx, "Failed to query/scan customer by ID", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get customer by ID: %w", apperrors.ErrDatabase, err)
	}

	logCtx.DebugContext(ctx, "Customer found successfully")
	return cust, nil
}

func (r *CustomerRepository) FindAll(ctx context.Context, filter customer.Filter) (customers []*customer.Customer, err error) {
	defer observe("customer_find_all", time.Now(), &err)
	r.logger.InfoContext(ctx, "Attempting to find customers", slog.Bool("activeOnly", filter.ActiveOnly))

	query, args := buildCustomerListQuery(filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query customers", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query customers: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	customers = make([]*customer.Customer, 0)
	for rows.Next() {
		cust, scanErr := scanCustomer(rows)
		if scanErr != nil {
			r.logger.ErrorContext(ctx, "Failed to scan customer row", slog.Any("error", scanErr))
			return nil, fmt.Errorf("%w: failed to scan customer row: %w", apperrors.ErrDatabase, scanErr)
		}
		customers = append(customers, cust)
	}

	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating customer rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating customer rows: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Finished finding customers", slog.Int("count", len(customers)))
	return customers, nil
}

func buildCustomerListQuery(filter customer.Filter) (string, []any) {
	var (
		conditions []string
		args       []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.ActiveOnly {
		add("active = $%d", true)
	}
	if filter.Level != nil {
		add("membership_level = $%d", string(*filter.Level))
	}
	if filter.Status != nil {
		add("customer_status = $%d", string(*filter.Status))
	}
	if filter.Risk != nil {
		add("risk_level = $%d", string(*filter.Risk))
	}

	query := `SELECT ` + customerColumns + `
        FROM customers`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY id ASC"

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return query, args
}

func (r *CustomerRepository) FindActiveIDs(ctx context.Context) (ids []int64, err error) {
	defer observe("customer_active_ids", time.Now(), &err)
	logCtx := r.logger.With(slog.String("operation", "FindActiveIDs"))
	logCtx.DebugContext(ctx, "Attempting to get all active customer IDs")

	query := `SELECT id FROM customers WHERE active = TRUE ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to query active customer IDs", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query active customers: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	ids = make([]int64, 0)
	for rows.Next() {
		var id int64
		if err = rows.Scan(&id); err != nil {
			logCtx.ErrorContext(ctx, "Failed to scan active customer ID", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan customer ID: %w", apperrors.ErrDatabase, err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		logCtx.ErrorContext(ctx, "Error iterating active customer IDs", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating customer IDs: %w", apperrors.ErrDatabase, err)
	}

	logCtx.DebugContext(ctx, "Fetched active customer IDs", slog.Int("count", len(ids)))
	return ids, nil
}

func (r *CustomerRepository) SetActiveStatus(ctx context.Context, customerID int64, isActive bool) error {
	query := `UPDATE customers SET active = $1, updated_at = NOW() WHERE id = $2`
	return r.execOne(ctx, "customer_set_active", customerID, query, isActive, customerID)
}

// RecordVisit bumps the visit counter. last_visit_date only moves forward.
func (r *CustomerRepository) RecordVisit(ctx context.Context, customerID int64, visitDate time.Time) error {
	query := `
        UPDATE customers
        SET total_visits = total_visits + 1,
            last_visit_date = GREATEST(last_visit_date, $1::date),
            updated_at = NOW()
        WHERE id = $2`
	return r.execOne(ctx, "customer_record_visit", customerID, query, visitDate, customerID)
}

func (r *CustomerRepository) IncrementComplaints(ctx context.Context, customerID int64) error {
	query := `UPDATE customers SET complaint_count = complaint_count + 1, updated_at = NOW() WHERE id = $1`
	return r.execOne(ctx, "customer_increment_complaints", customerID, query, customerID)
}

func (r *CustomerRepository) UpdateClassification(ctx context.Context, customerID int64, annualRevenue decimal.Decimal, result membership.Result, classifiedAt time.Time) error {
	query := `
        UPDATE customers
        SET annual_revenue = $1,
            membership_level = $2,
            customer_status = $3,
            risk_level = $4,
            classified_at = $5,
            updated_at = NOW()
        WHERE id = $6`
	return r.execOne(ctx, "customer_update_classification", customerID, query,
		annualRevenue,
		string(result.MembershipLevel),
		string(result.CustomerStatus),
		string(result.RiskLevel),
		classifiedAt,
		customerID,
	)
}

func (r *CustomerRepository) execOne(ctx context.Context, queryName string, customerID int64, query string, args ...any) (err error) {
	defer observe(queryName, time.Now(), &err)
	logCtx := r.logger.With(slog.Int64("customerID", customerID), slog.String("operation", queryName))
	logCtx.DebugContext(ctx, "Executing customer update")

	cmdTag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to execute customer update", slog.Any("error", err))
		return fmt.Errorf("%w: failed to execute %s: %w", apperrors.ErrDatabase, queryName, err)
	}

	if cmdTag.RowsAffected() == 0 {
		logCtx.WarnContext(ctx, "Update affected zero rows, customer likely not found")
		return customer.ErrNotFound
	}

	logCtx.DebugContext(ctx, "Customer updated successfully")
	return nil
}

// Summarize counts active customers per stored label.
func (r *CustomerRepository) Summarize(ctx context.Context) (summary *customer.Summary, err error) {
	defer observe("customer_summarize", time.Now(), &err)

	query := `
        SELECT membership_level, customer_status, risk_level, COUNT(*)
        FROM customers
        WHERE active = TRUE
        GROUP BY membership_level, customer_status, risk_level`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query classification summary", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to summarize customers: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	summary = customer.NewSummary()
	for rows.Next() {
		var level, status, risk string
		var count int64
		if err = rows.Scan(&level, &status, &risk, &count); err != nil {
			r.logger.ErrorContext(ctx, "Failed to scan summary row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan summary row: %w", apperrors.ErrDatabase, err)
		}
		result, parseErr := parseLabels(level, status, risk)
		if parseErr != nil {
			r.logger.WarnContext(ctx, "Skipping summary row with unknown labels", slog.Any("error", parseErr))
			continue
		}
		summary.Add(result, int(count))
	}
	if err = rows.Err(); err != nil {
		r.logger.ErrorContext(ctx, "Error iterating summary rows", slog.Any("error", err))
		return nil, fmt.Errorf("%w: error iterating summary rows: %w", apperrors.ErrDatabase, err)
	}
	return summary, nil
}

func scanCustomer(row pgx.Row) (*customer.Customer, error) {
	var (
		cust                customer.Customer
		phone               *string
		level, status, risk string
	)
	err := row.Scan(
		&cust.CustomerID,
		&cust.Name,
		&phone,
		&cust.AnnualRevenue,
		&cust.TotalVisits,
		&cust.LastVisitDate,
		&cust.ComplaintCount,
		&level,
		&status,
		&risk,
		&cust.Active,
		&cust.ClassifiedAt,
		&cust.CreateDate,
		&cust.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if phone != nil {
		cust.Phone = *phone
	}

	result, err := parseLabels(level, status, risk)
	if err != nil {
		return nil, err
	}
	cust.MembershipLevel = result.MembershipLevel
	cust.CustomerStatus = result.CustomerStatus
	cust.RiskLevel = result.RiskLevel
	return &cust, nil
}

func parseLabels(level, status, risk string) (membership.Result, error) {
	l, ok := membership.ParseLevel(level)
	if !ok {
		return membership.Result{}, fmt.Errorf("unknown membership level %q", level)
	}
	s, ok := membership.ParseStatus(status)
	if !ok {
		return membership.Result{}, fmt.Errorf("unknown customer status %q", status)
	}
	rk, ok := membership.ParseRiskLevel(risk)
	if !ok {
		return membership.Result{}, fmt.Errorf("unknown risk level %q", risk)
	}
	return membership.Result{MembershipLevel: l, CustomerStatus: s, RiskLevel: rk}, nil
}
