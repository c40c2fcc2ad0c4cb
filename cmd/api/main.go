package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gestock/internal/config"
	"gestock/internal/domain/model"
	"gestock/internal/handler"
	"gestock/internal/infra/db"
	infraRepo "gestock/internal/infra/repository"
	"gestock/internal/infra/storage"
	"gestock/internal/repository"
	"gestock/internal/server"
	"gestock/internal/usecase"
	auth "gestock/internal/usecase/auth_usecase"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type uuidGenerator struct{}

func (g *uuidGenerator) NewID() string {
	return uuid.NewString()
}

type realClock struct{}

func (c *realClock) Now() time.Time {
	return time.Now()
}

type jwtIssuer struct {
	secret    []byte
	accessTTL time.Duration
}

func (i *jwtIssuer) Issue(userID int64, role model.Role, tokenVersion int, now time.Time) (string, time.Time, error) {
	expiresAt := now.Add(i.accessTTL)

	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"tv":   tokenVersion,
		"iat":  now.Unix(),
		"exp":  expiresAt.Unix(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return signed, expiresAt, nil
}

func main() {
	//.envは無くても起動できる（本番は環境変数で渡す）
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	//DB接続
	gormDB, err := db.Connect()
	if err != nil {
		panic(err)
	}
	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Product{},
		&model.Sale{},
		&model.Invoice{},
		&model.InvoiceItem{},
		&model.StockMovement{},
	); err != nil {
		panic(err)
	}

	//Repository（GORM実装）生成
	userRepo := infraRepo.NewUserRepository(gormDB)
	rtRepo := infraRepo.NewRefreshTokenRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	saleRepo := infraRepo.NewSaleGormRepository(gormDB)
	invoiceRepo := infraRepo.NewInvoiceGormRepository(gormDB)
	itemRepo := infraRepo.NewInvoiceItemGormRepository(gormDB)
	movementRepo := infraRepo.NewStockMovementGormRepository(gormDB)

	//写真ストレージ（MINIO_ENDPOINT未設定ならオフ）
	var photoRepo repository.PhotoRepository
	if cfg.MinioEndpoint != "" {
		mc, err := storage.NewMinioClient(cfg)
		if err != nil {
			panic(err)
		}
		if err := storage.EnsureBucket(context.Background(), mc, cfg.MinioBucket); err != nil {
			panic(err)
		}
		photoRepo = storage.NewPhotoMinioRepository(mc, cfg.MinioBucket)
	}

	//usecaseに渡す部品
	idGen := &uuidGenerator{}
	clock := &realClock{}

	//bcrypt（会員登録：Hash / ログイン：Verify）
	hasher := auth.NewBcryptPasswordHasher(12)
	verifier := auth.NewBcryptPasswordVerifier()

	//JWT issuer
	issuer := &jwtIssuer{
		secret:    []byte(cfg.JWTSecret),
		accessTTL: 15 * time.Minute,
	}

	//refresh TTL
	refreshTTL := 14 * 24 * time.Hour

	settings := usecase.DefaultSaleSettings(cfg.Currency)

	//Usecase生成
	registerUC := auth.NewRegisterUserUsecase(userRepo, hasher, clock)
	loginUC := auth.NewLoginUsecase(userRepo, rtRepo, verifier, issuer, idGen, clock, refreshTTL)
	logoutUC := auth.NewLogoutUsecase(rtRepo)
	refreshUC := auth.NewRefreshUsecase(userRepo, rtRepo, issuer, idGen, clock, refreshTTL)
	logoutAllUC := auth.NewLogoutAllUsecase(userRepo, rtRepo)
	productUC := usecase.NewProductUsecase(productRepo, movementRepo, photoRepo, idGen, clock)
	saleUC := usecase.NewSaleUsecase(saleRepo, invoiceRepo, itemRepo, productRepo, movementRepo, idGen, clock, settings)
	invoiceUC := usecase.NewInvoiceUsecase(invoiceRepo, itemRepo, saleRepo, idGen, clock, settings)

	//Handler生成
	h := server.Handlers{
		Auth:     handler.NewAuthHandler(registerUC, loginUC, logoutUC, refreshUC, logoutAllUC, refreshTTL, cfg.CookieSecure),
		Products: handler.NewProductHandler(productUC),
		Sales:    handler.NewSaleHandler(saleUC),
		Invoices: handler.NewInvoiceHandler(invoiceUC),
	}

	e := server.New(cfg, h, userRepo)

	//Server起動
	addr := cfg.Port
	if addr[0] != ':' {
		addr = ":" + addr
	}

	go func() {
		if err := server.Start(e, addr); err != nil && err != http.ErrServerClosed {
			e.Logger.Fatal(err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx, e); err != nil {
		e.Logger.Fatal(err)
	}
}
