package usecase

import (
	"demo/pkg/store"

	"github.com/google/wire"
)

var ProviderSet = wire.NewSet(
	NewChatUsecase,
	NewAssetUsecase,
	NewCommandMatcher,
	NewWsUseCase,
	store.ProviderSet,
)
