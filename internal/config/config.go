package config

import (
	"fmt"
	"os"
)

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	DBDriver string // postgres / sqlite

	JWTSecret string // JWT署名シークレット

	GoEnv string // dev/prod
	FEURL string // フロントURL（CORSで使う）

	Currency string // 金額の通貨コード（XOF）

	CookieSecure bool // CookieにSecure属性を付けるか（ローカル開発ではfalse）

	// 商品写真用のオブジェクトストレージ（未設定なら写真機能は無効）
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
}

// Loadは環境変数から設定を読み込む
func Load() (Config, error) {
	cfg := Config{
		Port:     getenv("PORT", "8080"),
		DBDriver: getenv("DB_DRIVER", "postgres"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		GoEnv: getenv("GO_ENV", "dev"),
		FEURL: os.Getenv("FE_URL"),

		Currency: getenv("CURRENCY", "XOF"),

		CookieSecure: getenv("COOKIE_SECURE", "true") != "false",

		MinioEndpoint:  os.Getenv("MINIO_ENDPOINT"),
		MinioAccessKey: os.Getenv("MINIO_ACCESS_KEY"),
		MinioSecretKey: os.Getenv("MINIO_SECRET_KEY"),
		MinioBucket:    getenv("MINIO_BUCKET", "gestock-photos"),
		MinioUseSSL:    os.Getenv("MINIO_USE_SSL") == "true",
	}

	//必須チェック
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.MinioEndpoint != "" {
		if cfg.MinioAccessKey == "" {
			return Config{}, fmt.Errorf("MINIO_ACCESS_KEY is required when MINIO_ENDPOINT is set")
		}
		if cfg.MinioSecretKey == "" {
			return Config{}, fmt.Errorf("MINIO_SECRET_KEY is required when MINIO_ENDPOINT is set")
		}
	}

	return cfg, nil
}

func getenv(key string, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
