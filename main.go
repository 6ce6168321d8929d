package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/viper"

	"github.com/addspin/zerotrace/artifacts"
	"github.com/addspin/zerotrace/check"
	"github.com/addspin/zerotrace/controllers"
	"github.com/addspin/zerotrace/crypts"
	"github.com/addspin/zerotrace/routes"
	"github.com/addspin/zerotrace/service"
	"github.com/addspin/zerotrace/store"
	"github.com/addspin/zerotrace/utils"
)

func main() {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	if err := viper.ReadInConfig(); err != nil {
		log.Fatalf("Error reading config file: %s", err)
	}

	if err := utils.SetupLogger(); err != nil {
		log.Fatalf("Error setting up logger: %s", err)
	}
	logger := utils.L()

	// Database initialization
	database := viper.GetString("database.path")
	db, err := sqlx.Open("sqlite3", database)
	if err != nil {
		logger.Fatalw("open database failed", "path", database, "error", err)
	}
	defer db.Close()
	store.InitSchema(db)
	logger.Infow("connected to database", "path", database)

	// Signing key bootstrap. The private key never leaves this host.
	privateKeyPath := viper.GetString("keys.private")
	publicKeyPath := viper.GetString("keys.public")
	if err := crypts.EnsureKeyPair(privateKeyPath, publicKeyPath); err != nil {
		logger.Fatalw("key bootstrap failed", "error", err)
	}
	signer, err := crypts.NewSigner(privateKeyPath)
	if err != nil {
		logger.Fatalw("load signing key failed", "error", err)
	}
	verifier, err := crypts.NewVerifier(publicKeyPath)
	if err != nil {
		logger.Fatalw("load verification key failed", "error", err)
	}

	st := store.NewSqlite(db)
	objects := artifacts.NewObjectStore(
		viper.GetString("storage.root"),
		viper.GetString("storage.url_secret"),
	)

	handler := &controllers.Handler{
		Store:       st,
		Verify:      service.NewVerification(st, verifier),
		Issue:       service.NewIssuance(st, signer, objects, viper.GetString("verify.base_url")),
		Objects:     objects,
		UploadDir:   viper.GetString("upload.dir"),
		MaxUpload:   viper.GetInt64("upload.max_bytes"),
		DownloadTTL: viper.GetDuration("storage.download_ttl"),
	}
	if handler.MaxUpload == 0 {
		handler.MaxUpload = 16 << 20
	}
	if handler.DownloadTTL == 0 {
		handler.DownloadTTL = 15 * time.Minute
	}

	checkInterval := viper.GetDuration("check.interval")
	if checkInterval == 0 {
		checkInterval = time.Hour
	}
	go check.StartIntegritySweep(st, verifier, checkInterval)

	app := fiber.New(fiber.Config{
		BodyLimit: int(handler.MaxUpload) + (1 << 20),
	})
	routes.Setup(app, handler)

	listen := viper.GetString("server.listen")
	if listen == "" {
		listen = ":3000"
	}
	logger.Infow("listening", "addr", listen)
	if err := app.Listen(listen); err != nil {
		logger.Fatalw("server stopped", "error", err)
	}
}
