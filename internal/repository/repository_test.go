package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/fayiz2005/Kaze/internal/migrate"
	"github.com/fayiz2005/Kaze/internal/models"
	"github.com/fayiz2005/Kaze/internal/repository"
	"github.com/fayiz2005/Kaze/pkg/testutil"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := testutil.SetupTestPostgres(t)
	if err := migrate.MigrateStoreDB(context.Background(), db, zap.NewNop(), migrate.DefaultMigrateOptions()); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedProduct(t *testing.T, repo *repository.Repository, name string, price int64, stock int32, variants ...models.ProductVariant) *models.Product {
	t.Helper()
	ctx := context.Background()

	cat := &models.Category{Name: "cat-" + uuid.NewString()[:8]}
	if err := repo.Categories.Create(ctx, cat); err != nil {
		t.Fatalf("create category: %v", err)
	}

	p := &models.Product{
		CategoryID: cat.ID,
		Name:       name,
		PriceCents: price,
		Stock:      stock,
		Variants:   variants,
	}
	if err := repo.Products.Create(ctx, p); err != nil {
		t.Fatalf("create product: %v", err)
	}
	return p
}

func TestProductRepo_CRUD(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	p := seedProduct(t, repo, "Linen Shirt", 2500, 0,
		models.ProductVariant{SizeType: models.SizeStandard, SizeValue: "M", Stock: 4},
		models.ProductVariant{SizeType: models.SizeStandard, SizeValue: "L", Stock: 2},
	)

	got, err := repo.Products.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got == nil || got.Name != "Linen Shirt" || len(got.Variants) != 2 {
		t.Fatalf("GetByID mismatch: %+v", got)
	}
	if got.Category == nil || got.Category.ID != p.CategoryID {
		t.Fatalf("category not preloaded: %+v", got.Category)
	}

	missing, err := repo.Products.GetByID(ctx, uuid.New())
	if err != nil || missing != nil {
		t.Fatalf("expected nil,nil for missing product, got %+v, %v", missing, err)
	}

	deleted, err := repo.Products.Delete(ctx, p.ID)
	if err != nil || !deleted {
		t.Fatalf("Delete: %v deleted=%v", err, deleted)
	}

	// варианты уходят каскадом
	vs, err := repo.Variants.BatchGetByIDs(ctx, []uuid.UUID{p.Variants[0].ID, p.Variants[1].ID})
	if err != nil {
		t.Fatalf("BatchGetByIDs: %v", err)
	}
	if len(vs) != 0 {
		t.Fatalf("expected variants to be deleted, got %d", len(vs))
	}

	deleted2, err := repo.Products.Delete(ctx, p.ID)
	if err != nil {
		t.Fatalf("Delete second: %v", err)
	}
	if deleted2 {
		t.Fatal("expected deleted2=false")
	}
}

func TestProductRepo_List(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	a := seedProduct(t, repo, "Apple Hoodie", 1000, 1)
	seedProduct(t, repo, "Banana Tee", 2000, 1)
	seedProduct(t, repo, "Cherry Jeans", 3000, 1)

	list, total, err := repo.Products.List(ctx, repository.ProductListFilter{Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if total != 3 || len(list) != 3 {
		t.Fatalf("expected 3 products, got total=%d len=%d", total, len(list))
	}

	search, total, err := repo.Products.List(ctx, repository.ProductListFilter{Query: "APPLE", Limit: 10})
	if err != nil {
		t.Fatalf("List search: %v", err)
	}
	if total != 1 || len(search) != 1 || search[0].ID != a.ID {
		t.Fatalf("search mismatch: total=%d %+v", total, search)
	}

	byCat, total, err := repo.Products.List(ctx, repository.ProductListFilter{CategoryID: &a.CategoryID})
	if err != nil {
		t.Fatalf("List by category: %v", err)
	}
	if total != 1 || len(byCat) != 1 {
		t.Fatalf("category filter mismatch: total=%d", total)
	}

	page, total, err := repo.Products.List(ctx, repository.ProductListFilter{Limit: 2})
	if err != nil {
		t.Fatalf("List page: %v", err)
	}
	if total != 3 || len(page) != 2 {
		t.Fatalf("pagination mismatch: total=%d len=%d", total, len(page))
	}
}

func TestVariantRepo_TryDecrementStock(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	p := seedProduct(t, repo, "Belt", 1500, 0,
		models.ProductVariant{SizeType: models.SizeWaist, SizeValue: "32", Stock: 3},
	)
	v := p.Variants[0]

	ok, err := repo.Variants.TryDecrementStock(ctx, p.ID, v.ID, 2)
	if err != nil || !ok {
		t.Fatalf("TryDecrementStock: ok=%v err=%v", ok, err)
	}

	ok, err = repo.Variants.TryDecrementStock(ctx, p.ID, v.ID, 2)
	if err != nil {
		t.Fatalf("TryDecrementStock second: %v", err)
	}
	if ok {
		t.Fatal("expected decrement beyond stock to fail")
	}

	// вариант чужого товара не трогаем
	ok, err = repo.Variants.TryDecrementStock(ctx, uuid.New(), v.ID, 1)
	if err != nil || ok {
		t.Fatalf("expected mismatched product to affect no rows: ok=%v err=%v", ok, err)
	}

	got, _ := repo.Variants.GetByID(ctx, v.ID)
	if got.Stock != 1 {
		t.Fatalf("expected stock=1, got %d", got.Stock)
	}
}

func TestVariantRepo_SetStock(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	p := seedProduct(t, repo, "Cap", 900, 0,
		models.ProductVariant{SizeType: models.SizeStandard, SizeValue: "ONE", Stock: 0},
	)
	v := p.Variants[0]

	ok, err := repo.Variants.SetStock(ctx, p.ID, v.ID, 7)
	if err != nil || !ok {
		t.Fatalf("SetStock: ok=%v err=%v", ok, err)
	}

	ok, err = repo.Variants.SetStock(ctx, uuid.New(), v.ID, 9)
	if err != nil || ok {
		t.Fatalf("SetStock foreign product: ok=%v err=%v", ok, err)
	}

	// CHECK (stock >= 0)
	if _, err := repo.Variants.SetStock(ctx, p.ID, v.ID, -1); err == nil {
		t.Fatal("expected check constraint violation for negative stock")
	}

	got, _ := repo.Variants.GetByID(ctx, v.ID)
	if got.Stock != 7 {
		t.Fatalf("expected stock=7, got %d", got.Stock)
	}
}

func TestProductRepo_TryDecrementStock(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	p := seedProduct(t, repo, "Socks", 300, 5)

	ok, err := repo.Products.TryDecrementStock(ctx, p.ID, 5)
	if err != nil || !ok {
		t.Fatalf("TryDecrementStock: ok=%v err=%v", ok, err)
	}
	ok, err = repo.Products.TryDecrementStock(ctx, p.ID, 1)
	if err != nil || ok {
		t.Fatalf("expected empty stock to refuse: ok=%v err=%v", ok, err)
	}
}

// Конкурентные списания одного варианта: ни одного оверселла.
func TestVariantRepo_ConcurrentDecrement(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	const stock = 5
	const workers = 20

	p := seedProduct(t, repo, "Limited Jacket", 10000, 0,
		models.ProductVariant{SizeType: models.SizeStandard, SizeValue: "M", Stock: stock},
	)
	v := p.Variants[0]

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		success int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.WithTx(ctx, func(tx *repository.Repository) error {
				ok, err := tx.Variants.TryDecrementStock(ctx, p.ID, v.ID, 1)
				if err != nil {
					return err
				}
				if !ok {
					return errors.New("no stock")
				}
				return nil
			})
			if err == nil {
				mu.Lock()
				success++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if success != stock {
		t.Fatalf("expected %d successful decrements, got %d", stock, success)
	}
	got, _ := repo.Variants.GetByID(ctx, v.ID)
	if got.Stock != 0 {
		t.Fatalf("expected stock=0, got %d", got.Stock)
	}
}

func TestRepository_WithTxRollback(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	p := seedProduct(t, repo, "Scarf", 1200, 0,
		models.ProductVariant{SizeType: models.SizeStandard, SizeValue: "ONE", Stock: 2},
	)
	v := p.Variants[0]

	boom := errors.New("boom")
	err := repo.WithTx(ctx, func(tx *repository.Repository) error {
		if ok, err := tx.Variants.TryDecrementStock(ctx, p.ID, v.ID, 2); err != nil || !ok {
			t.Fatalf("decrement inside tx: ok=%v err=%v", ok, err)
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, _ := repo.Variants.GetByID(ctx, v.ID)
	if got.Stock != 2 {
		t.Fatalf("expected rollback to keep stock=2, got %d", got.Stock)
	}
}

func TestOrderItemRepo_GetByOrderID(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	coat := seedProduct(t, repo, "Coat", 12000, 4)
	boots := seedProduct(t, repo, "Boots", 8000, 0,
		models.ProductVariant{SizeType: models.SizeStandard, SizeValue: "42", Stock: 2},
	)
	bootsVariant := boots.Variants[0].ID

	o := &models.Order{
		FullName:      "Jane Doe",
		Email:         "jane@example.com",
		Address:       "1 Main St",
		City:          "Springfield",
		PostalCode:    "12345",
		Phone:         "+1234567890123",
		PaymentMethod: models.PaymentCOD,
		TotalCents:    32000,
	}
	if err := repo.Orders.Create(ctx, o); err != nil {
		t.Fatalf("Create order: %v", err)
	}

	// одна метка времени на весь заказ: порядок задаёт только position
	at := time.Now().UTC()
	items := []models.OrderItem{
		{OrderID: o.ID, ProductID: boots.ID, VariantID: &bootsVariant, Quantity: 1, PriceCents: 8000, Position: 1, CreatedAt: at},
		{OrderID: o.ID, ProductID: coat.ID, Quantity: 2, PriceCents: 12000, Position: 0, CreatedAt: at},
	}
	if err := repo.OrderItems.BulkCreate(ctx, items); err != nil {
		t.Fatalf("BulkCreate: %v", err)
	}

	// цена в заказе не зависит от последующих правок каталога
	if err := db.Model(&models.Product{}).Where("id = ?", coat.ID).Update("price_cents", 99900).Error; err != nil {
		t.Fatalf("update price: %v", err)
	}

	rows, err := repo.OrderItems.GetByOrderID(ctx, o.ID)
	if err != nil {
		t.Fatalf("GetByOrderID: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 items, got %d", len(rows))
	}
	if rows[0].ProductID != coat.ID || rows[0].PriceCents != 12000 || rows[0].Quantity != 2 {
		t.Fatalf("unexpected first item: %+v", rows[0])
	}
	if rows[1].ProductID != boots.ID || rows[1].VariantID == nil || *rows[1].VariantID != bootsVariant || rows[1].PriceCents != 8000 {
		t.Fatalf("unexpected second item: %+v", rows[1])
	}

	full, err := repo.Orders.GetByID(ctx, o.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if len(full.Items) != 2 || full.Items[0].ProductID != coat.ID || full.Items[1].ProductID != boots.ID {
		t.Fatalf("preloaded items out of cart order: %+v", full.Items)
	}

	none, err := repo.OrderItems.GetByOrderID(ctx, uuid.New())
	if err != nil || len(none) != 0 {
		t.Fatalf("expected no items for unknown order: %v %v", none, err)
	}
}

func TestOrderRepo_CreateAndDashboard(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	p := seedProduct(t, repo, "Parka", 5000, 0,
		models.ProductVariant{SizeType: models.SizeStandard, SizeValue: "L", Stock: 3},
	)
	vid := p.Variants[0].ID

	newOrder := func() *models.Order {
		o := &models.Order{
			FullName:      "Jane Doe",
			Email:         "jane@example.com",
			Address:       "1 Main St",
			City:          "Springfield",
			PostalCode:    "12345",
			Phone:         "+1234567890123",
			PaymentMethod: models.PaymentCOD,
			TotalCents:    10000,
		}
		if err := repo.Orders.Create(ctx, o); err != nil {
			t.Fatalf("Create order: %v", err)
		}
		items := []models.OrderItem{{OrderID: o.ID, ProductID: p.ID, VariantID: &vid, Quantity: 2, PriceCents: 5000}}
		if err := repo.OrderItems.BulkCreate(ctx, items); err != nil {
			t.Fatalf("BulkCreate: %v", err)
		}
		return o
	}

	pending := newOrder()
	sentRecent := newOrder()
	sentOld := newOrder()

	sum, err := repo.OrderItems.SumByOrder(ctx, pending.ID)
	if err != nil || sum != 10000 {
		t.Fatalf("SumByOrder: sum=%d err=%v", sum, err)
	}

	now := time.Now().UTC()
	if ok, err := repo.Orders.ToggleSent(ctx, sentRecent.ID, now.Add(-24*time.Hour)); err != nil || !ok {
		t.Fatalf("ToggleSent recent: ok=%v err=%v", ok, err)
	}
	if ok, err := repo.Orders.ToggleSent(ctx, sentOld.ID, now.Add(-10*24*time.Hour)); err != nil || !ok {
		t.Fatalf("ToggleSent old: ok=%v err=%v", ok, err)
	}

	list, err := repo.Orders.ListDashboard(ctx, now.Add(-5*24*time.Hour))
	if err != nil {
		t.Fatalf("ListDashboard: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 dashboard orders, got %d", len(list))
	}
	for _, o := range list {
		if o.ID == sentOld.ID {
			t.Fatal("old sent order must not be listed")
		}
		if len(o.Items) != 1 || o.Items[0].Product == nil || o.Items[0].Variant == nil {
			t.Fatalf("items not expanded: %+v", o.Items)
		}
	}

	got, err := repo.Orders.GetByID(ctx, sentRecent.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.IsSent || got.SentAt == nil {
		t.Fatalf("expected sent order, got %+v", got)
	}

	// повторный toggle снимает отметку и чистит sent_at
	if ok, err := repo.Orders.ToggleSent(ctx, sentRecent.ID, now); err != nil || !ok {
		t.Fatalf("ToggleSent back: ok=%v err=%v", ok, err)
	}
	got, _ = repo.Orders.GetByID(ctx, sentRecent.ID)
	if got.IsSent || got.SentAt != nil {
		t.Fatalf("expected unsent order, got %+v", got)
	}

	ok, err := repo.Orders.ToggleSent(ctx, uuid.New(), now)
	if err != nil || ok {
		t.Fatalf("ToggleSent missing: ok=%v err=%v", ok, err)
	}
}

func TestInviteRepo_ConsumeOnce(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()
	now := time.Now().UTC()

	inv := &models.AdminInvite{
		Email:     "new.admin@example.com",
		Role:      models.RoleAdmin,
		CodeHash:  "hash-1",
		InvitedBy: uuid.New(),
		ExpiresAt: now.Add(time.Hour),
	}
	if err := repo.Invites.Create(ctx, inv); err != nil {
		t.Fatalf("Create invite: %v", err)
	}

	got, err := repo.Invites.GetValidByHash(ctx, "NEW.ADMIN@example.com", "hash-1", now)
	if err != nil || got.ID != inv.ID {
		t.Fatalf("GetValidByHash: %+v %v", got, err)
	}

	ok, err := repo.Invites.Consume(ctx, inv.ID)
	if err != nil || !ok {
		t.Fatalf("Consume: ok=%v err=%v", ok, err)
	}
	ok, _ = repo.Invites.Consume(ctx, inv.ID)
	if ok {
		t.Fatal("invite consumed twice")
	}

	if _, err := repo.Invites.GetValidByHash(ctx, inv.Email, "hash-1", now); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for consumed invite, got %v", err)
	}
}

func TestUserRepo_UniqueEmailCaseInsensitive(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()

	if err := repo.Users.Create(ctx, &models.User{Email: "Admin@Example.com", Password: "x", Role: models.RoleAdmin}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := repo.Users.Create(ctx, &models.User{Email: "admin@example.com", Password: "y", Role: models.RoleAdmin}); err == nil {
		t.Fatal("expected unique violation for same email in other case")
	}

	u, err := repo.Users.GetByEmail(ctx, "ADMIN@example.com")
	if err != nil || u == nil {
		t.Fatalf("GetByEmail: %+v %v", u, err)
	}
}

func TestPasswordResetRepo_LatestCodeOnly(t *testing.T) {
	db := setupDB(t)
	repo := repository.New(db)
	ctx := context.Background()
	now := time.Now().UTC()
	userID := uuid.New()

	first := &models.PasswordResetToken{UserID: userID, Email: "a@example.com", CodeHash: "h1", ExpiresAt: now.Add(time.Hour)}
	if err := repo.PasswordReset.Create(ctx, first); err != nil {
		t.Fatalf("Create first: %v", err)
	}
	second := &models.PasswordResetToken{UserID: userID, Email: "a@example.com", CodeHash: "h2", ExpiresAt: now.Add(time.Hour)}
	if err := repo.PasswordReset.Create(ctx, second); err != nil {
		t.Fatalf("Create second: %v", err)
	}

	if _, err := repo.PasswordReset.GetValidByHash(ctx, userID, "h1", now); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("earlier code must be revoked, got %v", err)
	}
	got, err := repo.PasswordReset.GetValidByHash(ctx, userID, "h2", now)
	if err != nil || got.ID != second.ID {
		t.Fatalf("GetValidByHash: %+v %v", got, err)
	}
	if _, err := repo.PasswordReset.GetValidByHash(ctx, userID, "h2", now.Add(2*time.Hour)); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expired code must not match, got %v", err)
	}
	if _, err := repo.PasswordReset.GetValidByHash(ctx, uuid.New(), "h2", now); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("code of another user must not match, got %v", err)
	}

	ok, err := repo.PasswordReset.Consume(ctx, second.ID)
	if err != nil || !ok {
		t.Fatalf("Consume: ok=%v err=%v", ok, err)
	}
	ok, err = repo.PasswordReset.Consume(ctx, second.ID)
	if err != nil || ok {
		t.Fatalf("second Consume must report false: ok=%v err=%v", ok, err)
	}
	if _, err := repo.PasswordReset.GetValidByHash(ctx, userID, "h2", now); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("consumed code must not match, got %v", err)
	}

	n, err := repo.PasswordReset.DeleteAllForUser(ctx, userID)
	if err != nil || n != 1 {
		t.Fatalf("DeleteAllForUser: n=%d err=%v", n, err)
	}
}
