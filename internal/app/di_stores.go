package app

import (
	"context"
	"fmt"

	"github.com/allisson/bluegreen/internal/config"
	cryptoMemory "github.com/allisson/bluegreen/internal/crypto/repository/memory"
	cryptoMongo "github.com/allisson/bluegreen/internal/crypto/repository/mongodb"
	cryptoMySQL "github.com/allisson/bluegreen/internal/crypto/repository/mysql"
	cryptoPostgreSQL "github.com/allisson/bluegreen/internal/crypto/repository/postgresql"
	cryptoService "github.com/allisson/bluegreen/internal/crypto/service"
	"github.com/allisson/bluegreen/internal/database"
	secretsMemory "github.com/allisson/bluegreen/internal/secrets/repository/memory"
	secretsMongo "github.com/allisson/bluegreen/internal/secrets/repository/mongodb"
	secretsMySQL "github.com/allisson/bluegreen/internal/secrets/repository/mysql"
	secretsPostgreSQL "github.com/allisson/bluegreen/internal/secrets/repository/postgresql"
	secretsUseCase "github.com/allisson/bluegreen/internal/secrets/usecase"
)

// KeyVaultRepository returns the data key store of the configured driver.
func (c *Container) KeyVaultRepository() (cryptoService.KeyVaultRepository, error) {
	if err := c.initOnce(&c.storesInit, "stores", c.initStores); err != nil {
		return nil, err
	}
	return c.keyVaultRepo, nil
}

// SecretRepository returns the secret store of the configured driver.
func (c *Container) SecretRepository() (secretsUseCase.SecretRepository, error) {
	if err := c.initOnce(&c.storesInit, "stores", c.initStores); err != nil {
		return nil, err
	}
	return c.secretRepo, nil
}

// MetadataRepository returns the activation record store of the configured driver.
func (c *Container) MetadataRepository() (secretsUseCase.MetadataRepository, error) {
	if err := c.initOnce(&c.storesInit, "stores", c.initStores); err != nil {
		return nil, err
	}
	return c.metadataRepo, nil
}

// initStores opens one connection and builds the three repositories over it.
func (c *Container) initStores() error {
	switch c.config.StoreDriver {
	case config.StoreMongoDB:
		return c.initMongoStores()
	case config.StorePostgres, config.StoreMySQL:
		return c.initSQLStores()
	case config.StoreMemory:
		c.Logger().Warn("using the in-memory store, data is lost on exit")
		c.keyVaultRepo = cryptoMemory.NewKeyVaultRepository()
		c.secretRepo = secretsMemory.NewSecretRepository()
		c.metadataRepo = secretsMemory.NewMetadataRepository()
		c.pinger = memoryPinger{}
		return nil
	default:
		return fmt.Errorf("unsupported store driver: %s", c.config.StoreDriver)
	}
}

func (c *Container) initMongoStores() error {
	ctx, cancel := context.WithTimeout(context.Background(), c.config.MongoConnectTimeout)
	defer cancel()

	client, err := database.ConnectMongo(ctx, database.MongoConfig{
		URI:            c.config.MongoURI,
		ConnectTimeout: c.config.MongoConnectTimeout,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	c.mongoClient = client
	c.keyVaultRepo = cryptoMongo.NewMongoKeyVaultRepository(client)
	c.secretRepo = secretsMongo.NewMongoSecretRepository(client.Database(c.config.SecretsDatabase()))
	c.metadataRepo = secretsMongo.NewMongoMetadataRepository(client.Database(c.config.MongoKeyVaultDatabase))
	c.pinger = mongoPinger{client: client}
	return nil
}

func (c *Container) initSQLStores() error {
	db, err := database.Connect(database.Config{
		Driver:             c.config.StoreDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	c.db = db
	c.pinger = sqlPinger{db: db}

	if c.config.StoreDriver == config.StoreMySQL {
		c.keyVaultRepo = cryptoMySQL.NewMySQLKeyVaultRepository(db)
		c.secretRepo = secretsMySQL.NewMySQLSecretRepository(db)
		c.metadataRepo = secretsMySQL.NewMySQLMetadataRepository(db)
		return nil
	}

	c.keyVaultRepo = cryptoPostgreSQL.NewPostgreSQLKeyVaultRepository(db)
	c.secretRepo = secretsPostgreSQL.NewPostgreSQLSecretRepository(db)
	c.metadataRepo = secretsPostgreSQL.NewPostgreSQLMetadataRepository(db)
	return nil
}
