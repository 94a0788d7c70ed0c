package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DrugDocument represents a canonical drug identity in the catalog.
type DrugDocument struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	CanonicalID    string             `bson:"canonical_id" json:"canonical_id"`
	DisplayName    string             `bson:"display_name" json:"display_name"`
	NormalizedName string             `bson:"normalized_name" json:"-"`
	Aliases        []string           `bson:"aliases,omitempty" json:"aliases,omitempty"`
	DosageForm     string             `bson:"dosage_form,omitempty" json:"dosage_form,omitempty"`
	Strength       string             `bson:"strength,omitempty" json:"strength,omitempty"`
	CreatedAt      time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time          `bson:"updated_at" json:"updated_at"`
}

// PackageDocument represents a dispensable package of a drug.
type PackageDocument struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"-"`
	PackageID   string               `bson:"package_id" json:"package_id"`
	CanonicalID string               `bson:"canonical_id" json:"canonical_id"`
	Size        primitive.Decimal128 `bson:"size" json:"-"`
	Unit        string               `bson:"unit" json:"unit"`
	Status      string               `bson:"status" json:"status"`
	Labeler     string               `bson:"labeler,omitempty" json:"labeler,omitempty"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	Version     int                  `bson:"version" json:"version"`
	CreatedAt   time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time            `bson:"updated_at" json:"updated_at"`
	UpdatedBy   string               `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
}

// SizeDecimal returns the package size as an exact decimal.
func (p PackageDocument) SizeDecimal() decimal.Decimal {
	d, err := decimal.NewFromString(p.Size.String())
	if err != nil {
		return decimal.Zero
	}
	return d
}

// SetSize stores size exactly.
func (p *PackageDocument) SetSize(size decimal.Decimal) error {
	d, err := primitive.ParseDecimal128(size.String())
	if err != nil {
		return err
	}
	p.Size = d
	return nil
}

// CatalogRepository provides catalog operations backed by MongoDB.
type CatalogRepository struct {
	drugs    *mongo.Collection
	packages *mongo.Collection
}

// NewCatalogRepository creates a new catalog repository.
func NewCatalogRepository(db *MongoDB) *CatalogRepository {
	return &CatalogRepository{
		drugs:    db.Drugs,
		packages: db.Packages,
	}
}

// FindDrugByName returns the drug whose name or alias matches the normalized key.
func (r *CatalogRepository) FindDrugByName(ctx context.Context, normalizedName string) (*DrugDocument, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"normalized_name": normalizedName},
		bson.M{"aliases": normalizedName},
	}}
	return r.findDrug(ctx, filter)
}

// FindDrugByCanonicalID returns the drug with the given canonical identifier.
func (r *CatalogRepository) FindDrugByCanonicalID(ctx context.Context, canonicalID string) (*DrugDocument, error) {
	return r.findDrug(ctx, bson.M{"canonical_id": canonicalID})
}

func (r *CatalogRepository) findDrug(ctx context.Context, filter bson.M) (*DrugDocument, error) {
	var drug DrugDocument
	err := r.drugs.FindOne(ctx, filter).Decode(&drug)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &drug, nil
}

// FindPackage returns the package with the given identifier.
func (r *CatalogRepository) FindPackage(ctx context.Context, packageID string) (*PackageDocument, error) {
	var pkg PackageDocument
	err := r.packages.FindOne(ctx, bson.M{"package_id": packageID}).Decode(&pkg)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pkg, nil
}

// ListPackages returns every package of a drug, ordered by package identifier.
func (r *CatalogRepository) ListPackages(ctx context.Context, canonicalID string) ([]PackageDocument, error) {
	opts := options.Find().SetSort(bson.D{{Key: "package_id", Value: 1}})
	cursor, err := r.packages.Find(ctx, bson.M{"canonical_id": canonicalID}, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	packages := []PackageDocument{}
	if err := cursor.All(ctx, &packages); err != nil {
		return nil, err
	}
	return packages, nil
}

// ListDrugs returns catalog drugs ordered by display name.
func (r *CatalogRepository) ListDrugs(ctx context.Context, limit int) ([]DrugDocument, error) {
	opts := options.Find().SetSort(bson.D{{Key: "normalized_name", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.drugs.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = cursor.Close(ctx)
	}()

	drugs := []DrugDocument{}
	if err := cursor.All(ctx, &drugs); err != nil {
		return nil, err
	}
	return drugs, nil
}

// UpsertDrug creates or replaces a drug keyed by canonical identifier.
func (r *CatalogRepository) UpsertDrug(ctx context.Context, drug DrugDocument) (*DrugDocument, error) {
	now := time.Now()
	update := bson.M{
		"$set": bson.M{
			"display_name":    drug.DisplayName,
			"normalized_name": NormalizeName(drug.DisplayName),
			"aliases":         NormalizeAll(drug.Aliases),
			"dosage_form":     drug.DosageForm,
			"strength":        drug.Strength,
			"updated_at":      now,
		},
		"$setOnInsert": bson.M{"created_at": now},
	}

	var saved DrugDocument
	err := r.drugs.FindOneAndUpdate(
		ctx,
		bson.M{"canonical_id": drug.CanonicalID},
		update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&saved)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

// UpsertPackage creates or updates a package keyed by package identifier,
// bumping its version on every write.
func (r *CatalogRepository) UpsertPackage(ctx context.Context, pkg PackageDocument, updatedBy string) (*PackageDocument, error) {
	now := time.Now()
	set := bson.M{
		"canonical_id": pkg.CanonicalID,
		"size":         pkg.Size,
		"unit":         pkg.Unit,
		"status":       pkg.Status,
		"labeler":      pkg.Labeler,
		"description":  pkg.Description,
		"updated_at":   now,
	}
	if updatedBy != "" {
		set["updated_by"] = updatedBy
	}
	update := bson.M{
		"$set":         set,
		"$inc":         bson.M{"version": 1},
		"$setOnInsert": bson.M{"created_at": now},
	}

	var saved PackageDocument
	err := r.packages.FindOneAndUpdate(
		ctx,
		bson.M{"package_id": pkg.PackageID},
		update,
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	).Decode(&saved)
	if err != nil {
		return nil, err
	}
	return &saved, nil
}
