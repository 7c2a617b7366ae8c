package nakama

import "omok/internal/app"

const (
	// RpcQuickMatch is the Nakama RPC id clients call to get a session of their own.
	RpcQuickMatch = "quick_match"

	// RpcFindSession returns the caller's live session and its match.
	RpcFindSession = "find_session"

	// RpcSessionTicket issues the ticket a client presents when joining its match.
	RpcSessionTicket = "session_ticket"

	// MatchNameOmok is the authoritative match handler name registered with Nakama.
	MatchNameOmok = "omok_match"

	// MatchParamSessionID carries the session a match is created for.
	MatchParamSessionID = "session_id"

	// JoinMetadataTicket is the join metadata key holding the session ticket.
	JoinMetadataTicket = "ticket"
)

const (
	historyCollection = "omok_history"
	ratingCollection  = "omok_rating"
	ratingSeedKey     = "seed_v1"

	// NotificationCodeRematch tells clients their rematch match is ready.
	NotificationCodeRematch = 1101
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpReady            int64 = 1
	OpMove             int64 = 2
	OpPostGameDecision int64 = 3
	OpLeave            int64 = 4

	// Server -> Client events
	OpSessionJoined      int64 = 101
	OpPlayerReady        int64 = 102
	OpReadyRejected      int64 = 103
	OpGameStarted        int64 = 104
	OpTurnStarted        int64 = 105
	OpTurnEnded          int64 = 106
	OpMoveRejected       int64 = 107
	OpBoardSnapshot      int64 = 108
	OpGameCompleted      int64 = 109
	OpPostGamePrompt     int64 = 110
	OpPostGameUpdate     int64 = 111
	OpDecisionRejected   int64 = 112
	OpSessionTerminated  int64 = 113
	OpRematchStarted     int64 = 114
	OpPlayerDisconnected int64 = 115
	OpPlayerReconnected  int64 = 116
	OpTurnTimeout        int64 = 117
	OpError              int64 = 199
)

var noticeOpCodes = map[string]int64{
	string(app.NoticeSessionJoined):      OpSessionJoined,
	string(app.NoticePlayerReady):        OpPlayerReady,
	string(app.NoticeReadyRejected):      OpReadyRejected,
	string(app.NoticeGameStarted):        OpGameStarted,
	string(app.NoticeTurnStarted):        OpTurnStarted,
	string(app.NoticeTurnEnded):          OpTurnEnded,
	string(app.NoticeMoveRejected):       OpMoveRejected,
	string(app.NoticeBoardSnapshot):      OpBoardSnapshot,
	string(app.NoticeGameCompleted):      OpGameCompleted,
	string(app.NoticePostGamePrompt):     OpPostGamePrompt,
	string(app.NoticePostGameUpdate):     OpPostGameUpdate,
	string(app.NoticeDecisionRejected):   OpDecisionRejected,
	string(app.NoticeSessionTerminated):  OpSessionTerminated,
	string(app.NoticeRematchStarted):     OpRematchStarted,
	string(app.NoticePlayerDisconnected): OpPlayerDisconnected,
	string(app.NoticePlayerReconnected):  OpPlayerReconnected,
	string(app.NoticeTurnTimeout):        OpTurnTimeout,
}
