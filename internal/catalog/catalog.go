package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/bizformulate/insights-api/internal/models"
	"github.com/bizformulate/insights-api/internal/utils"
)

// BusinessModelCanvas is the built-in framework. It lives in the
// catalog like every other framework (built_in = 1) so lookups take a
// single path; EnsureBuiltins guarantees the row exists at startup.
const BusinessModelCanvas = "Business Model Canvas"

var canvasBlocks = []string{
	"Key Partners",
	"Key Activities",
	"Value Propositions",
	"Customer Relationships",
	"Customer Segments",
	"Key Resources",
	"Channels",
	"Cost Structure",
	"Revenue Streams",
}

// Catalog stores named analytical frameworks and their ordered
// categories.
type Catalog struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Catalog {
	return &Catalog{db: db}
}

// ListFrameworks returns all frameworks in insertion order, categories
// eager-loaded in position order.
func (c *Catalog) ListFrameworks(ctx context.Context) ([]models.Framework, error) {
	var frameworks []models.Framework
	if err := c.db.SelectContext(ctx, &frameworks,
		`SELECT id, name, description, built_in FROM frameworks ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list frameworks: %w", err)
	}

	var categories []models.Category
	if err := c.db.SelectContext(ctx, &categories,
		`SELECT id, framework_id, name, position FROM categories ORDER BY framework_id, position`); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	byFramework := make(map[int64][]models.Category, len(frameworks))
	for _, cat := range categories {
		byFramework[cat.FrameworkID] = append(byFramework[cat.FrameworkID], cat)
	}
	for i := range frameworks {
		frameworks[i].Categories = byFramework[frameworks[i].ID]
	}

	return frameworks, nil
}

// CategoriesOf returns the ordered category names of the named
// framework, or a NotFound error for a name that is not in the catalog.
func (c *Catalog) CategoriesOf(ctx context.Context, name string) ([]string, error) {
	var frameworkID int64
	err := c.db.GetContext(ctx, &frameworkID, `SELECT id FROM frameworks WHERE name = ?`, name)
	if err == sql.ErrNoRows {
		return nil, utils.NewNotFoundError(fmt.Sprintf("Framework '%s' not found", name))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up framework %q: %w", name, err)
	}

	var names []string
	if err := c.db.SelectContext(ctx, &names,
		`SELECT name FROM categories WHERE framework_id = ? ORDER BY position`, frameworkID); err != nil {
		return nil, fmt.Errorf("failed to load categories of %q: %w", name, err)
	}

	return names, nil
}

// EnsureBuiltins inserts the Business Model Canvas if it is missing.
// Safe to call on every startup.
func (c *Catalog) EnsureBuiltins(ctx context.Context) error {
	return c.insertIfMissing(ctx, models.Framework{
		Name:        BusinessModelCanvas,
		Description: "The nine building blocks of a business model, from key partners to revenue streams.",
		BuiltIn:     true,
	}, canvasBlocks)
}

// Seed inserts the two stock consulting frameworks. Existing names are
// left untouched, so running it against a populated store is harmless.
func (c *Catalog) Seed(ctx context.Context) error {
	seeds := []struct {
		framework  models.Framework
		categories []string
	}{
		{
			framework: models.Framework{
				Name:        "SWOT",
				Description: "A strategic planning tool to identify Strengths, Weaknesses, Opportunities, and Threats.",
			},
			categories: []string{"Strengths", "Weaknesses", "Opportunities", "Threats"},
		},
		{
			framework: models.Framework{
				Name:        "Porter’s Five Forces",
				Description: "A framework for analyzing the competitive intensity and attractiveness of an industry.",
			},
			categories: []string{
				"Threat of New Entrants",
				"Bargaining Power of Suppliers",
				"Bargaining Power of Buyers",
				"Threat of Substitutes",
				"Industry Rivalry",
			},
		},
	}

	for _, seed := range seeds {
		if err := c.insertIfMissing(ctx, seed.framework, seed.categories); err != nil {
			return err
		}
	}

	return nil
}

func (c *Catalog) insertIfMissing(ctx context.Context, fw models.Framework, categories []string) error {
	var existing int64
	err := c.db.GetContext(ctx, &existing, `SELECT id FROM frameworks WHERE name = ?`, fw.Name)
	if err == nil {
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("failed to check framework %q: %w", fw.Name, err)
	}

	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	builtIn := 0
	if fw.BuiltIn {
		builtIn = 1
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO frameworks (name, description, built_in) VALUES (?, ?, ?)`,
		fw.Name, fw.Description, builtIn)
	if err != nil {
		return fmt.Errorf("failed to insert framework %q: %w", fw.Name, err)
	}

	frameworkID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get framework id: %w", err)
	}

	for i, name := range categories {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO categories (framework_id, name, position) VALUES (?, ?, ?)`,
			frameworkID, name, i); err != nil {
			return fmt.Errorf("failed to insert category %q: %w", name, err)
		}
	}

	return tx.Commit()
}
