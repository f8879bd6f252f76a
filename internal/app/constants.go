package app

import "gostop/internal/domain"

// MinPlayersToStartGame defines the minimum number of occupied seats required to start a game.
// Keep this centralized so tests or local runs can adjust the rule without touching multiple call sites.
const MinPlayersToStartGame = domain.MinPlayers

// maxRedeals bounds the table-quad redeal loop of one deal.
const maxRedeals = 50
