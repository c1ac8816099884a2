package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	authDomain "github.com/allisson/blueprint-secrets/internal/auth/domain"
	authHTTP "github.com/allisson/blueprint-secrets/internal/auth/http"
	authRepository "github.com/allisson/blueprint-secrets/internal/auth/repository"
	authService "github.com/allisson/blueprint-secrets/internal/auth/service"
	authUseCase "github.com/allisson/blueprint-secrets/internal/auth/usecase"
)

// SecretService returns the secret service for authentication operations.
func (c *Container) SecretService() authService.SecretService {
	c.secretServiceInit.Do(func() {
		c.secretService = authService.NewSecretService()
	})
	return c.secretService
}

// TokenService returns the token service for authentication operations.
func (c *Container) TokenService() authService.TokenService {
	c.tokenServiceInit.Do(func() {
		c.tokenService = authService.NewTokenService()
	})
	return c.tokenService
}

// AccessPolicy returns the group policy guarding the secret document.
func (c *Container) AccessPolicy() authDomain.AccessPolicy {
	return authDomain.AccessPolicy{RequiredGroups: c.config.AuthRequiredGroups}
}

// ClientRepository returns the clients loaded from Config.AuthClientsFile.
func (c *Container) ClientRepository() (authUseCase.ClientRepository, error) {
	var err error
	c.clientRepositoryInit.Do(func() {
		c.clientRepository, err = c.initClientRepository()
		if err != nil {
			c.setInitError("clientRepository", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("clientRepository"); storedErr != nil {
		return nil, storedErr
	}
	return c.clientRepository, nil
}

// TokenRepository returns the in-process token repository.
func (c *Container) TokenRepository() authUseCase.TokenRepository {
	c.tokenRepositoryInit.Do(func() {
		c.tokenRepository = authRepository.NewMemoryTokenRepository()
	})
	return c.tokenRepository
}

// ClientUseCase returns the client use case.
func (c *Container) ClientUseCase() authUseCase.ClientUseCase {
	c.clientUseCaseInit.Do(func() {
		c.clientUseCase = authUseCase.NewClientUseCase(c.SecretService())
	})
	return c.clientUseCase
}

// TokenUseCase returns the token use case.
func (c *Container) TokenUseCase() (authUseCase.TokenUseCase, error) {
	var err error
	c.tokenUseCaseInit.Do(func() {
		c.tokenUseCase, err = c.initTokenUseCase()
		if err != nil {
			c.setInitError("tokenUseCase", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("tokenUseCase"); storedErr != nil {
		return nil, storedErr
	}
	return c.tokenUseCase, nil
}

// Authenticator returns the request authenticator shared by the API and the UI.
func (c *Container) Authenticator() (*authHTTP.Authenticator, error) {
	var err error
	c.authenticatorInit.Do(func() {
		var tokenUseCase authUseCase.TokenUseCase
		tokenUseCase, err = c.TokenUseCase()
		if err != nil {
			err = fmt.Errorf("failed to get token use case for authenticator: %w", err)
			c.setInitError("authenticator", err)
			return
		}
		c.authenticator = authHTTP.NewAuthenticator(tokenUseCase, c.TokenService())
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("authenticator"); storedErr != nil {
		return nil, storedErr
	}
	return c.authenticator, nil
}

// TokenHandler returns the HTTP handler for token issuance and revocation.
func (c *Container) TokenHandler() (*authHTTP.TokenHandler, error) {
	var err error
	c.tokenHandlerInit.Do(func() {
		c.tokenHandler, err = c.initTokenHandler()
		if err != nil {
			c.setInitError("tokenHandler", err)
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr := c.initError("tokenHandler"); storedErr != nil {
		return nil, storedErr
	}
	return c.tokenHandler, nil
}

// initClientRepository loads the clients file. A missing file yields an empty
// repository so the server can start before any client is provisioned.
func (c *Container) initClientRepository() (authUseCase.ClientRepository, error) {
	repo, err := authRepository.LoadYAMLClientRepository(c.config.AuthClientsFile)
	if err == nil {
		c.Logger().Info("loaded auth clients",
			slog.String("path", c.config.AuthClientsFile),
			slog.Int("clients", repo.Len()),
		)
		return repo, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	c.Logger().Warn("auth clients file not found, no client can sign in",
		slog.String("path", c.config.AuthClientsFile),
	)
	empty, err := authRepository.NewYAMLClientRepository(authRepository.ClientsFile{})
	if err != nil {
		return nil, err
	}
	return empty, nil
}

func (c *Container) initTokenUseCase() (authUseCase.TokenUseCase, error) {
	clientRepository, err := c.ClientRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get client repository for token use case: %w", err)
	}

	baseUseCase := authUseCase.NewTokenUseCase(
		c.config,
		clientRepository,
		c.TokenRepository(),
		c.SecretService(),
		c.TokenService(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for token use case: %w", err)
		}
		return authUseCase.NewTokenUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initTokenHandler() (*authHTTP.TokenHandler, error) {
	tokenUseCase, err := c.TokenUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get token use case for token handler: %w", err)
	}

	authenticator, err := c.Authenticator()
	if err != nil {
		return nil, fmt.Errorf("failed to get authenticator for token handler: %w", err)
	}

	return authHTTP.NewTokenHandler(tokenUseCase, authenticator, c.Logger()), nil
}
