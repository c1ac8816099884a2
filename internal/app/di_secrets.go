package app

import (
	"context"
	"fmt"

	secretsDomain "github.com/allisson/blueprint-secrets/internal/secrets/domain"
	secretsHTTP "github.com/allisson/blueprint-secrets/internal/secrets/http"
	"github.com/allisson/blueprint-secrets/internal/secrets/store"
	secretsUseCase "github.com/allisson/blueprint-secrets/internal/secrets/usecase"
)

// SecretStore returns the store selected by Config.StoreDriver.
func (c *Container) SecretStore() (secretsUseCase.SecretStore, error) {
	var err error
	c.secretStoreInit.Do(func() {
		c.secretStore, err = c.initSecretStore()
		if err != nil {
			c.setInitError("secretStore", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("secretStore"); storedErr != nil {
		return nil, storedErr
	}
	return c.secretStore, nil
}

// SecretsUseCase returns the secrets use case.
func (c *Container) SecretsUseCase() (secretsUseCase.SecretsUseCase, error) {
	var err error
	c.secretsUseCaseInit.Do(func() {
		c.secretsUseCase, err = c.initSecretsUseCase()
		if err != nil {
			c.setInitError("secretsUseCase", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("secretsUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.secretsUseCase, nil
}

// SecretsHandler returns the HTTP handler for the secret document API.
func (c *Container) SecretsHandler() (*secretsHTTP.SecretsHandler, error) {
	var err error
	c.secretsHandlerInit.Do(func() {
		c.secretsHandler, err = c.initSecretsHandler()
		if err != nil {
			c.setInitError("secretsHandler", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("secretsHandler"); storedErr != nil {
		return nil, storedErr
	}
	return c.secretsHandler, nil
}

func (c *Container) initSecretStore() (secretsUseCase.SecretStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	switch c.config.StoreDriver {
	case "aws":
		client, err := store.NewSecretsManagerClient(ctx, store.AWSConfig{
			Region:          c.config.AWSRegion,
			EndpointURL:     c.config.AWSEndpointURL,
			AccessKeyID:     c.config.AWSAccessKeyID,
			SecretAccessKey: c.config.AWSSecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		return store.NewAWSSecretsManagerStore(client), nil
	case "gcp":
		if c.config.GCPProjectID == "" {
			return nil, fmt.Errorf("GCP_PROJECT_ID is required for the gcp store driver")
		}
		client, err := store.NewSecretManagerClient(ctx, c.config.GCPCredentialsFile)
		if err != nil {
			return nil, err
		}
		c.addStoreCloser(client.Close)
		return store.NewGCPSecretManagerStore(client, c.config.GCPProjectID), nil
	case "azure":
		if c.config.AzureVaultURL == "" {
			return nil, fmt.Errorf("AZURE_VAULT_URL is required for the azure store driver")
		}
		client, err := store.NewKeyVaultClient(c.config.AzureVaultURL)
		if err != nil {
			return nil, err
		}
		return store.NewAzureKeyVaultStore(client), nil
	case "vault":
		client, err := store.NewVaultClient(c.config.VaultAddress, c.config.VaultToken)
		if err != nil {
			return nil, err
		}
		return store.NewVaultKVStore(client, c.config.VaultMount), nil
	case "blob":
		// The bucket outlives this function, so it is opened without the connect deadline.
		bucket, err := store.OpenBucket(context.Background(), c.config.BlobBucketURL)
		if err != nil {
			return nil, err
		}
		blobStore := store.NewBlobStore(bucket)
		c.addStoreCloser(blobStore.Close)
		return blobStore, nil
	case "postgres", "mysql":
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for secret store: %w", err)
		}
		txManager, err := c.TxManager()
		if err != nil {
			return nil, fmt.Errorf("failed to get tx manager for secret store: %w", err)
		}
		if c.config.StoreDriver == "mysql" {
			return store.NewMySQLStore(db, txManager), nil
		}
		return store.NewPostgreSQLStore(db, txManager), nil
	case "memory":
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", c.config.StoreDriver)
	}
}

func (c *Container) addStoreCloser(closeFn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.storeClosers = append(c.storeClosers, closeFn)
}

func (c *Container) initSecretsUseCase() (secretsUseCase.SecretsUseCase, error) {
	writeMode, err := secretsDomain.ParseWriteMode(c.config.SecretsWriteMode)
	if err != nil {
		return nil, err
	}

	secretStore, err := c.SecretStore()
	if err != nil {
		return nil, fmt.Errorf("failed to get secret store for secrets use case: %w", err)
	}

	baseUseCase := secretsUseCase.NewSecretsUseCase(secretStore, c.config.SecretID, writeMode, c.Logger())

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for secrets use case: %w", err)
		}
		return secretsUseCase.NewSecretsUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initSecretsHandler() (*secretsHTTP.SecretsHandler, error) {
	useCase, err := c.SecretsUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get secrets use case for secrets handler: %w", err)
	}
	return secretsHTTP.NewSecretsHandler(useCase, c.Logger()), nil
}
