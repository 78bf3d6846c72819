package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/vadimbarashkov/short-url/internal/entity"
)

type MockURLRepository struct {
	mock.Mock
}

func (r *MockURLRepository) FindByShortToken(ctx context.Context, shortToken string) (*entity.URL, error) {
	args := r.Called(ctx, shortToken)
	url, _ := args.Get(0).(*entity.URL)
	return url, args.Error(1)
}

func (r *MockURLRepository) FindByOriginalURL(ctx context.Context, originalURL string) ([]*entity.URL, error) {
	args := r.Called(ctx, originalURL)
	urls, _ := args.Get(0).([]*entity.URL)
	return urls, args.Error(1)
}

func (r *MockURLRepository) Save(ctx context.Context, url *entity.URL) error {
	args := r.Called(ctx, url)
	return args.Error(0)
}

func (r *MockURLRepository) IncrementVisitCount(ctx context.Context, shortToken string) (int64, error) {
	args := r.Called(ctx, shortToken)
	count, _ := args.Get(0).(int64)
	return count, args.Error(1)
}

type URLUseCaseTestSuite struct {
	suite.Suite
	errUnknown  error
	urlRepoMock *MockURLRepository
	uc          *URLUseCase
}

func (suite *URLUseCaseTestSuite) SetupSuite() {
	suite.errUnknown = errors.New("unknown error")
}

func (suite *URLUseCaseTestSuite) SetupSubTest() {
	suite.urlRepoMock = new(MockURLRepository)
	suite.uc = New(suite.urlRepoMock)
}

func (suite *URLUseCaseTestSuite) TearDownSubTest() {
	suite.urlRepoMock.AssertExpectations(suite.T())
}

func (suite *URLUseCaseTestSuite) TestNew() {
	suite.Run("defaults", func() {
		suite.Equal(DefaultShortTokenLength, suite.uc.shortTokenLength)
		suite.Equal(DefaultMaxAttempts, suite.uc.maxAttempts)
	})

	suite.Run("options", func() {
		uc := New(suite.urlRepoMock, WithShortTokenLength(12), WithMaxAttempts(3))

		suite.Equal(12, uc.shortTokenLength)
		suite.Equal(3, uc.maxAttempts)
	})
}

func (suite *URLUseCaseTestSuite) TestShortenURL() {
	suite.Run("empty original url", func() {
		url, err := suite.uc.ShortenURL(context.Background(), "")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrInvalidInput)
		suite.Nil(url)
	})

	suite.Run("short token generation error", func() {
		suite.uc.shortTokenLength = -1

		url, err := suite.uc.ShortenURL(context.Background(), "https://example.com")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrInternal)
		suite.Nil(url)
	})

	suite.Run("short token lookup error", func() {
		suite.urlRepoMock.
			On("FindByShortToken", mock.Anything, mock.AnythingOfType("string")).
			Once().
			Return(nil, suite.errUnknown)

		url, err := suite.uc.ShortenURL(context.Background(), "https://example.com")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrInternal)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(url)
	})

	suite.Run("short token taken by lookup", func() {
		suite.urlRepoMock.
			On("FindByShortToken", mock.Anything, mock.AnythingOfType("string")).
			Once().
			Return(&entity.URL{OriginalURL: "https://other.com"}, nil)
		suite.urlRepoMock.
			On("FindByShortToken", mock.Anything, mock.AnythingOfType("string")).
			Once().
			Return(nil, entity.ErrURLNotFound)
		suite.urlRepoMock.
			On("Save", mock.Anything, mock.AnythingOfType("*entity.URL")).
			Once().
			Return(nil)

		url, err := suite.uc.ShortenURL(context.Background(), "https://example.com")

		suite.NoError(err)
		suite.NotNil(url)
		suite.Equal("https://example.com", url.OriginalURL)
		suite.urlRepoMock.AssertNumberOfCalls(suite.T(), "FindByShortToken", 2)
	})

	suite.Run("short token taken on save", func() {
		suite.urlRepoMock.
			On("FindByShortToken", mock.Anything, mock.AnythingOfType("string")).
			Times(2).
			Return(nil, entity.ErrURLNotFound)
		suite.urlRepoMock.
			On("Save", mock.Anything, mock.AnythingOfType("*entity.URL")).
			Once().
			Return(entity.ErrShortTokenExists)
		suite.urlRepoMock.
			On("Save", mock.Anything, mock.AnythingOfType("*entity.URL")).
			Once().
			Return(nil)

		url, err := suite.uc.ShortenURL(context.Background(), "https://example.com")

		suite.NoError(err)
		suite.NotNil(url)
		suite.urlRepoMock.AssertNumberOfCalls(suite.T(), "Save", 2)
	})

	suite.Run("maximum attempts error", func() {
		suite.urlRepoMock.
			On("FindByShortToken", mock.Anything, mock.AnythingOfType("string")).
			Times(DefaultMaxAttempts).
			Return(nil, entity.ErrURLNotFound)
		suite.urlRepoMock.
			On("Save", mock.Anything, mock.AnythingOfType("*entity.URL")).
			Times(DefaultMaxAttempts).
			Return(entity.ErrShortTokenExists)

		url, err := suite.uc.ShortenURL(context.Background(), "https://example.com")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrInternal)
		suite.ErrorIs(err, ErrMaxAttemptsExceeded)
		suite.Nil(url)
	})

	suite.Run("custom maximum attempts", func() {
		uc := New(suite.urlRepoMock, WithMaxAttempts(3))

		suite.urlRepoMock.
			On("FindByShortToken", mock.Anything, mock.AnythingOfType("string")).
			Times(3).
			Return(&entity.URL{}, nil)

		url, err := uc.ShortenURL(context.Background(), "https://example.com")

		suite.Error(err)
		suite.ErrorIs(err, ErrMaxAttemptsExceeded)
		suite.Nil(url)
	})

	suite.Run("unknown error", func() {
		suite.urlRepoMock.
			On("FindByShortToken", mock.Anything, mock.AnythingOfType("string")).
			Once().
			Return(nil, entity.ErrURLNotFound)
		suite.urlRepoMock.
			On("Save", mock.Anything, mock.AnythingOfType("*entity.URL")).
			Once().
			Return(suite.errUnknown)

		url, err := suite.uc.ShortenURL(context.Background(), "https://example.com")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrInternal)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(url)
	})

	suite.Run("success", func() {
		suite.urlRepoMock.
			On("FindByShortToken", mock.Anything, mock.AnythingOfType("string")).
			Once().
			Return(nil, entity.ErrURLNotFound)
		suite.urlRepoMock.
			On("Save", mock.Anything, mock.MatchedBy(func(url *entity.URL) bool {
				return url.OriginalURL == "https://example.com" && url.VisitCount == 0
			})).
			Once().
			Return(nil)

		url, err := suite.uc.ShortenURL(context.Background(), "https://example.com")

		suite.NoError(err)
		suite.NotNil(url)
		suite.Len(url.ShortToken, DefaultShortTokenLength)
		suite.Equal("https://example.com", url.OriginalURL)
		suite.Zero(url.VisitCount)
		suite.False(url.CreatedAt.IsZero())

		_, err = uuid.Parse(url.ID)
		suite.NoError(err)
	})
}

func (suite *URLUseCaseTestSuite) TestResolveShortToken() {
	suite.Run("url not found", func() {
		suite.urlRepoMock.
			On("FindByShortToken", mock.Anything, "abc12345").
			Once().
			Return(nil, entity.ErrURLNotFound)

		originalURL, err := suite.uc.ResolveShortToken(context.Background(), "abc12345")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrURLNotFound)
		suite.ErrorContains(err, "abc12345")
		suite.Empty(originalURL)
	})

	suite.Run("unknown error", func() {
		suite.urlRepoMock.
			On("FindByShortToken", mock.Anything, "abc12345").
			Once().
			Return(nil, suite.errUnknown)

		originalURL, err := suite.uc.ResolveShortToken(context.Background(), "abc12345")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrInternal)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Empty(originalURL)
	})

	suite.Run("increment error", func() {
		suite.urlRepoMock.
			On("FindByShortToken", mock.Anything, "abc12345").
			Once().
			Return(&entity.URL{ShortToken: "abc12345", OriginalURL: "https://example.com"}, nil)
		suite.urlRepoMock.
			On("IncrementVisitCount", mock.Anything, "abc12345").
			Once().
			Return(nil, suite.errUnknown)

		originalURL, err := suite.uc.ResolveShortToken(context.Background(), "abc12345")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrInternal)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Empty(originalURL)
	})

	suite.Run("success", func() {
		suite.urlRepoMock.
			On("FindByShortToken", mock.Anything, "abc12345").
			Once().
			Return(&entity.URL{ShortToken: "abc12345", OriginalURL: "https://example.com"}, nil)
		suite.urlRepoMock.
			On("IncrementVisitCount", mock.Anything, "abc12345").
			Once().
			Return(int64(1), nil)

		originalURL, err := suite.uc.ResolveShortToken(context.Background(), "abc12345")

		suite.NoError(err)
		suite.Equal("https://example.com", originalURL)
	})
}

func (suite *URLUseCaseTestSuite) TestListShortTokens() {
	suite.Run("empty original url", func() {
		shortTokens, err := suite.uc.ListShortTokens(context.Background(), "")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrInvalidInput)
		suite.Nil(shortTokens)
	})

	suite.Run("no short tokens", func() {
		suite.urlRepoMock.
			On("FindByOriginalURL", mock.Anything, "https://example.com").
			Once().
			Return([]*entity.URL{}, nil)

		shortTokens, err := suite.uc.ListShortTokens(context.Background(), "https://example.com")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrURLNotFound)
		suite.ErrorContains(err, "https://example.com")
		suite.Nil(shortTokens)
	})

	suite.Run("unknown error", func() {
		suite.urlRepoMock.
			On("FindByOriginalURL", mock.Anything, "https://example.com").
			Once().
			Return(nil, suite.errUnknown)

		shortTokens, err := suite.uc.ListShortTokens(context.Background(), "https://example.com")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrInternal)
		suite.ErrorIs(err, suite.errUnknown)
		suite.Nil(shortTokens)
	})

	suite.Run("success", func() {
		suite.urlRepoMock.
			On("FindByOriginalURL", mock.Anything, "https://example.com").
			Once().
			Return([]*entity.URL{
				{ShortToken: "abc12345", OriginalURL: "https://example.com"},
				{ShortToken: "def67890", OriginalURL: "https://example.com"},
			}, nil)

		shortTokens, err := suite.uc.ListShortTokens(context.Background(), "https://example.com")

		suite.NoError(err)
		suite.ElementsMatch([]string{"abc12345", "def67890"}, shortTokens)
	})
}

func (suite *URLUseCaseTestSuite) TestGetVisitCount() {
	suite.Run("url not found", func() {
		suite.urlRepoMock.
			On("FindByShortToken", mock.Anything, "abc12345").
			Once().
			Return(nil, entity.ErrURLNotFound)

		count, err := suite.uc.GetVisitCount(context.Background(), "abc12345")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrURLNotFound)
		suite.Zero(count)
	})

	suite.Run("success", func() {
		suite.urlRepoMock.
			On("FindByShortToken", mock.Anything, "abc12345").
			Once().
			Return(&entity.URL{
				ShortToken:  "abc12345",
				OriginalURL: "https://example.com",
				URLStats: entity.URLStats{
					VisitCount: 7,
				},
			}, nil)

		count, err := suite.uc.GetVisitCount(context.Background(), "abc12345")

		suite.NoError(err)
		suite.Equal(int64(7), count)
	})
}

func (suite *URLUseCaseTestSuite) TestGetURLDetails() {
	suite.Run("unknown error", func() {
		suite.urlRepoMock.
			On("FindByShortToken", mock.Anything, "abc12345").
			Once().
			Return(nil, suite.errUnknown)

		url, err := suite.uc.GetURLDetails(context.Background(), "abc12345")

		suite.Error(err)
		suite.ErrorIs(err, entity.ErrInternal)
		suite.Nil(url)
	})

	suite.Run("success", func() {
		suite.urlRepoMock.
			On("FindByShortToken", mock.Anything, "abc12345").
			Once().
			Return(&entity.URL{
				ShortToken:  "abc12345",
				OriginalURL: "https://example.com",
				URLStats: entity.URLStats{
					VisitCount: 2,
				},
			}, nil)

		url, err := suite.uc.GetURLDetails(context.Background(), "abc12345")

		suite.NoError(err)
		suite.NotNil(url)
		suite.Equal("abc12345", url.ShortToken)
		suite.Equal("https://example.com", url.OriginalURL)
		suite.Equal(int64(2), url.VisitCount)
	})
}

func TestURLUseCase(t *testing.T) {
	suite.Run(t, new(URLUseCaseTestSuite))
}
