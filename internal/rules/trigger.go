package rules

// TriggerKind names a point in the session lifecycle at which rules are consulted.
type TriggerKind string

const (
	TriggerGameStart          TriggerKind = "GAME_START"
	TriggerTurnStart          TriggerKind = "TURN_START"
	TriggerPrePlacement       TriggerKind = "PRE_PLACEMENT"
	TriggerPostPlacement      TriggerKind = "POST_PLACEMENT"
	TriggerMoveValidation     TriggerKind = "MOVE_VALIDATION"
	TriggerTurnAdvance        TriggerKind = "TURN_ADVANCE"
	TriggerTurnRoundCompleted TriggerKind = "TURN_ROUND_COMPLETED"
	TriggerOutcomeEvaluation  TriggerKind = "OUTCOME_EVALUATION"
)

// ID identifies a rule in the catalogue and on the wire.
type ID string

const (
	SpeedGame            ID = "SPEED_GAME"
	JokerSummon          ID = "JOKER_SUMMON"
	StoneConversion      ID = "STONE_CONVERSION"
	FiveTurnBlocker      ID = "FIVE_TURN_BLOCKER"
	RoundTripTurns       ID = "ROUND_TRIP_TURNS"
	SequentialConversion ID = "SEQUENTIAL_CONVERSION"
	RandomPlacement      ID = "RANDOM_PLACEMENT"
	SixInRow             ID = "SIX_IN_ROW"
	Evolution            ID = "EVOLUTION"
	Colosseum            ID = "COLOSSEUM"
	Reversi              ID = "REVERSI"
	TenChain             ID = "TEN_CHAIN"
	AimMiss              ID = "AIM_MISS"
	Infection            ID = "INFECTION"
	BlockerBan           ID = "BLOCKER_BAN"
	BlackView            ID = "BLACK_VIEW"
	RandomMove           ID = "RANDOM_MOVE"
	LowDensityPurge      ID = "LOW_DENSITY_PURGE"
	ProtectiveZone       ID = "PROTECTIVE_ZONE"
	GoCapture            ID = "GO_CAPTURE"
	TurnOrderShuffle     ID = "TURN_ORDER_SHUFFLE"
	LuckySeven           ID = "LUCKY_SEVEN"
	NewPlayer            ID = "NEW_PLAYER"
)
