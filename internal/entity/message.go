package entity

// MessageType tags every frame exchanged over the game socket.
type MessageType string

const (
	MessageJoin         MessageType = "join"
	MessageMove         MessageType = "move"
	MessageGameState    MessageType = "gameState"
	MessagePlayerJoined MessageType = "playerJoined"
	MessageError        MessageType = "error"
)

// InboundMessage is what a client may send.
type InboundMessage struct {
	Type     MessageType `json:"type"`
	GameCode string      `json:"gameCode"`
	Position *int        `json:"position,omitempty"`
	Player   Mark        `json:"player,omitempty"`
}

type GameStateMessage struct {
	Type MessageType `json:"type"`
	Game *Game       `json:"game"`
}

type PlayerJoinedMessage struct {
	Type     MessageType `json:"type"`
	Player   string      `json:"player"`
	GameCode string      `json:"gameCode"`
}

type ErrorMessage struct {
	Type    MessageType `json:"type"`
	Message string      `json:"message"`
}

func NewGameStateMessage(game *Game) GameStateMessage {
	return GameStateMessage{Type: MessageGameState, Game: game}
}

func NewPlayerJoinedMessage(playerID, code string) PlayerJoinedMessage {
	return PlayerJoinedMessage{Type: MessagePlayerJoined, Player: playerID, GameCode: code}
}

func NewErrorMessage(text string) ErrorMessage {
	return ErrorMessage{Type: MessageError, Message: text}
}
