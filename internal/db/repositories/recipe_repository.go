// recipe_repository.go implements RecipeRepository. Workflow transitions are
// expressed as atomic conditional updates — the guard rides in the WHERE
// clause and the statement returns the updated row — so two requests racing
// on the same recipe cannot both succeed in contradictory ways.
package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/cookbook/cookbook-backend/internal/db/models"
)

const recipeColumns = `id, name, description, lang, owner, publisher, tags, year, location, category,
	portion, preparation_time_minutes, calification, preparation,
	image_name, image_url, image_content_type,
	published, reviewed, is_disabled, created_at, updated_at, username_insert, username_update`

// RecipeRepository handles recipe database operations
type RecipeRepository struct {
	db *sql.DB
}

// NewRecipeRepository creates a new RecipeRepository
func NewRecipeRepository(db *sql.DB) *RecipeRepository {
	return &RecipeRepository{db: db}
}

// rowScanner abstracts *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecipe(row rowScanner) (*models.Recipe, error) {
	r := &models.Recipe{}
	var preparation []byte
	var imageName, imageURL, imageContentType sql.NullString

	err := row.Scan(
		&r.ID,
		&r.Name,
		&r.Description,
		&r.Lang,
		&r.Owner,
		&r.Publisher,
		pq.Array(&r.Tags),
		&r.Year,
		&r.Location,
		pq.Array(&r.Category),
		&r.Portion,
		&r.PreparationTimeMinutes,
		&r.Calification,
		&preparation,
		&imageName,
		&imageURL,
		&imageContentType,
		&r.Published,
		&r.Reviewed,
		&r.IsDisabled,
		&r.CreatedAt,
		&r.UpdatedAt,
		&r.UsernameInsert,
		&r.UsernameUpdate,
	)
	if err != nil {
		return nil, err
	}

	if len(preparation) > 0 {
		if err := json.Unmarshal(preparation, &r.Preparation); err != nil {
			return nil, fmt.Errorf("failed to decode preparation: %w", err)
		}
	}
	if imageName.Valid {
		r.Image = &models.FileBlob{
			Name:        imageName.String,
			URL:         imageURL.String,
			ContentType: imageContentType.String,
		}
	}
	return r, nil
}

func scanRecipeRow(row *sql.Row) (*models.Recipe, error) {
	recipe, err := scanRecipe(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return recipe, nil
}

// Create inserts a new recipe
func (r *RecipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	recipe.ID = uuid.New().String()
	recipe.CreatedAt = time.Now()
	recipe.UpdatedAt = recipe.CreatedAt
	recipe.IsDisabled = false

	preparation, err := recipe.PreparationJSON()
	if err != nil {
		return fmt.Errorf("failed to encode preparation: %w", err)
	}

	query := `
		INSERT INTO recipes (id, name, description, lang, owner, publisher, tags, year, location, category,
			portion, preparation_time_minutes, calification, preparation,
			published, reviewed, is_disabled, created_at, updated_at, username_insert)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	`

	_, err = r.db.ExecContext(ctx, query,
		recipe.ID,
		recipe.Name,
		recipe.Description,
		recipe.Lang,
		recipe.Owner,
		recipe.Publisher,
		pq.Array(recipe.Tags),
		recipe.Year,
		recipe.Location,
		pq.Array(recipe.Category),
		recipe.Portion,
		recipe.PreparationTimeMinutes,
		recipe.Calification,
		preparation,
		recipe.Published,
		recipe.Reviewed,
		recipe.IsDisabled,
		recipe.CreatedAt,
		recipe.UpdatedAt,
		recipe.UsernameInsert,
	)
	return err
}

// GetByID retrieves a live recipe by id
func (r *RecipeRepository) GetByID(ctx context.Context, id string) (*models.Recipe, error) {
	query := fmt.Sprintf(`SELECT %s FROM recipes WHERE id = $1 AND is_disabled = FALSE`, recipeColumns)
	return scanRecipeRow(r.db.QueryRowContext(ctx, query, id))
}

// GetByIDAndPublisher retrieves a live recipe owned by the given publisher.
// A recipe that exists but belongs to someone else comes back nil, exactly
// like a missing one — ownership mismatches must not leak existence.
func (r *RecipeRepository) GetByIDAndPublisher(ctx context.Context, id, publisher string) (*models.Recipe, error) {
	query := fmt.Sprintf(`SELECT %s FROM recipes WHERE id = $1 AND publisher = $2 AND is_disabled = FALSE`, recipeColumns)
	return scanRecipeRow(r.db.QueryRowContext(ctx, query, id, publisher))
}

// contentSet is the shared SET fragment for content updates ($2..$15, $16=updated_at, $17=username_update)
const contentSet = `name = $2, description = $3, lang = $4, owner = $5, tags = $6, year = $7,
		location = $8, category = $9, portion = $10, preparation_time_minutes = $11,
		calification = $12, preparation = $13, published = $14, reviewed = $15,
		updated_at = $16, username_update = $17`

func (r *RecipeRepository) contentArgs(recipe *models.Recipe, actor string) ([]interface{}, error) {
	preparation, err := recipe.PreparationJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode preparation: %w", err)
	}
	return []interface{}{
		recipe.ID,
		recipe.Name,
		recipe.Description,
		recipe.Lang,
		recipe.Owner,
		pq.Array(recipe.Tags),
		recipe.Year,
		recipe.Location,
		pq.Array(recipe.Category),
		recipe.Portion,
		recipe.PreparationTimeMinutes,
		recipe.Calification,
		preparation,
		recipe.Published,
		recipe.Reviewed,
		time.Now(),
		actor,
	}, nil
}

// Update replaces a recipe's content unconditionally (administrative path —
// no workflow guard, published/reviewed are caller-supplied). Returns the
// updated recipe, or nil when no live row matches.
func (r *RecipeRepository) Update(ctx context.Context, recipe *models.Recipe, actor string) (*models.Recipe, error) {
	query := fmt.Sprintf(`
		UPDATE recipes SET %s
		WHERE id = $1 AND is_disabled = FALSE
		RETURNING %s
	`, contentSet, recipeColumns)

	args, err := r.contentArgs(recipe, actor)
	if err != nil {
		return nil, err
	}
	return scanRecipeRow(r.db.QueryRowContext(ctx, query, args...))
}

// UpdateOwned replaces content on the author path and forces the recipe back
// to draft. The workflow guard is part of the WHERE clause: published or
// pending-review rows never match, so a concurrent submit or publish cannot
// be overwritten.
func (r *RecipeRepository) UpdateOwned(ctx context.Context, recipe *models.Recipe, publisher string) (*models.Recipe, error) {
	recipe.Published = false
	recipe.Reviewed = nil

	query := fmt.Sprintf(`
		UPDATE recipes SET %s
		WHERE id = $1 AND publisher = $18 AND is_disabled = FALSE
			AND published = FALSE AND reviewed IS DISTINCT FROM FALSE
		RETURNING %s
	`, contentSet, recipeColumns)

	args, err := r.contentArgs(recipe, publisher)
	if err != nil {
		return nil, err
	}
	args = append(args, publisher)
	return scanRecipeRow(r.db.QueryRowContext(ctx, query, args...))
}

// SetReviewState moves an unpublished recipe between draft and
// pending-review (reviewed nil, false, or true for a moderator rejection).
// Published rows never match the guard.
func (r *RecipeRepository) SetReviewState(ctx context.Context, id, publisher string, reviewed *bool, actor string) (*models.Recipe, error) {
	query := fmt.Sprintf(`
		UPDATE recipes
		SET reviewed = $3, updated_at = $4, username_update = $5
		WHERE id = $1 AND publisher = $2 AND is_disabled = FALSE AND published = FALSE
		RETURNING %s
	`, recipeColumns)

	return scanRecipeRow(r.db.QueryRowContext(ctx, query, id, publisher, reviewed, time.Now(), actor))
}

// UnpublishOwned reverts a published recipe to draft, clearing the reviewed
// flag. Only published rows match.
func (r *RecipeRepository) UnpublishOwned(ctx context.Context, id, publisher, actor string) (*models.Recipe, error) {
	query := fmt.Sprintf(`
		UPDATE recipes
		SET published = FALSE, reviewed = NULL, updated_at = $3, username_update = $4
		WHERE id = $1 AND publisher = $2 AND is_disabled = FALSE AND published = TRUE
		RETURNING %s
	`, recipeColumns)

	return scanRecipeRow(r.db.QueryRowContext(ctx, query, id, publisher, time.Now(), actor))
}

// SetPublished flips the published flag on the administrative path. No
// ownership or review-state guard: admins may publish a recipe still mid
// review, and unpublishing leaves the reviewed flag untouched.
func (r *RecipeRepository) SetPublished(ctx context.Context, id string, published bool, actor string) (*models.Recipe, error) {
	query := fmt.Sprintf(`
		UPDATE recipes
		SET published = $2, updated_at = $3, username_update = $4
		WHERE id = $1 AND is_disabled = FALSE
		RETURNING %s
	`, recipeColumns)

	return scanRecipeRow(r.db.QueryRowContext(ctx, query, id, published, time.Now(), actor))
}

// SoftDelete disables a recipe on the administrative path
func (r *RecipeRepository) SoftDelete(ctx context.Context, id, actor string) (*models.Recipe, error) {
	query := fmt.Sprintf(`
		UPDATE recipes
		SET is_disabled = TRUE, updated_at = $2, username_update = $3
		WHERE id = $1 AND is_disabled = FALSE
		RETURNING %s
	`, recipeColumns)

	return scanRecipeRow(r.db.QueryRowContext(ctx, query, id, time.Now(), actor))
}

// SoftDeleteOwned disables an author's own recipe. Published rows never
// match — publication must be undone first.
func (r *RecipeRepository) SoftDeleteOwned(ctx context.Context, id, publisher string) (*models.Recipe, error) {
	query := fmt.Sprintf(`
		UPDATE recipes
		SET is_disabled = TRUE, updated_at = $3, username_update = $2
		WHERE id = $1 AND publisher = $2 AND is_disabled = FALSE AND published = FALSE
		RETURNING %s
	`, recipeColumns)

	return scanRecipeRow(r.db.QueryRowContext(ctx, query, id, publisher, time.Now()))
}

// UpdateImage attaches a stored blob to the recipe
func (r *RecipeRepository) UpdateImage(ctx context.Context, id string, blob *models.FileBlob, actor string) (*models.Recipe, error) {
	query := fmt.Sprintf(`
		UPDATE recipes
		SET image_name = $2, image_url = $3, image_content_type = $4, updated_at = $5, username_update = $6
		WHERE id = $1 AND is_disabled = FALSE
		RETURNING %s
	`, recipeColumns)

	return scanRecipeRow(r.db.QueryRowContext(ctx, query,
		id, blob.Name, blob.URL, blob.ContentType, time.Now(), actor))
}

func (r *RecipeRepository) queryRecipes(ctx context.Context, query string, args ...interface{}) ([]*models.Recipe, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query recipes: %w", err)
	}
	defer rows.Close()

	var recipes []*models.Recipe
	for rows.Next() {
		recipe, err := scanRecipe(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recipe: %w", err)
		}
		recipes = append(recipes, recipe)
	}
	return recipes, rows.Err()
}

// Find returns one page of recipes matching the filter, newest first
func (r *RecipeRepository) Find(ctx context.Context, filter RecipeFilter, limit, offset int) ([]*models.Recipe, error) {
	where, args, argCount := filter.whereClause()
	query := fmt.Sprintf(`
		SELECT %s FROM recipes
		%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, recipeColumns, where, argCount+1, argCount+2)
	args = append(args, limit, offset)
	return r.queryRecipes(ctx, query, args...)
}

// Count returns the cardinality of the same predicate Find paginates over
func (r *RecipeRepository) Count(ctx context.Context, filter RecipeFilter) (int, error) {
	where, args, _ := filter.whereClause()
	query := fmt.Sprintf(`SELECT COUNT(*) FROM recipes %s`, where)

	var total int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to count recipes: %w", err)
	}
	return total, nil
}

// RandomSample returns up to size recipes matching the filter in random order
func (r *RecipeRepository) RandomSample(ctx context.Context, filter RecipeFilter, size int) ([]*models.Recipe, error) {
	where, args, argCount := filter.whereClause()
	query := fmt.Sprintf(`
		SELECT %s FROM recipes
		%s
		ORDER BY random()
		LIMIT $%d
	`, recipeColumns, where, argCount+1)
	args = append(args, size)
	return r.queryRecipes(ctx, query, args...)
}

// AdminList returns live recipes regardless of publication state, with an
// optional case-insensitive substring match on name or description.
func (r *RecipeRepository) AdminList(ctx context.Context, q string, limit, offset int) ([]*models.Recipe, error) {
	if q != "" {
		query := fmt.Sprintf(`
			SELECT %s FROM recipes
			WHERE is_disabled = FALSE AND (name ILIKE $1 OR description ILIKE $1)
			ORDER BY created_at DESC
			LIMIT $2 OFFSET $3
		`, recipeColumns)
		return r.queryRecipes(ctx, query, "%"+q+"%", limit, offset)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM recipes
		WHERE is_disabled = FALSE
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, recipeColumns)
	return r.queryRecipes(ctx, query, limit, offset)
}
