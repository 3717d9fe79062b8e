package V1

import (
	"demo/hander"
	"demo/usecase"

	"github.com/google/wire"
)

type Handers struct {
	Health    *HealthHander
	Index     *IndexHander
	Chat      *ChatHander
	Character *CharacterHander
}

var ProviderSet = wire.NewSet(
	hander.NewBaseHandler,
	NewHealthHander,
	NewIndexHander,
	NewChatHander,
	NewCharacterHander,
	usecase.ProviderSet,

	wire.Struct(new(Handers), "*"),
)
