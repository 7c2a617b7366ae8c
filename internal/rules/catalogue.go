package rules

// Catalogue returns every rule the server can select, ordered by limit score.
func Catalogue() []Descriptor {
	return []Descriptor{
		speedGameRule(),
		jokerSummonRule(),
		stoneConversionRule(),
		fiveTurnBlockerRule(),
		roundTripTurnsRule(),
		sequentialConversionRule(),
		randomPlacementRule(),
		sixInRowRule(),
		evolutionRule(),
		colosseumRule(),
		reversiRule(),
		tenChainRule(),
		aimMissRule(),
		infectionRule(),
		blockerBanRule(),
		blackViewRule(),
		randomMoveRule(),
		lowDensityPurgeRule(),
		protectiveZoneRule(),
		goCaptureRule(),
		turnOrderShuffleRule(),
		luckySevenRule(),
		newPlayerRule(),
	}
}

// Lookup finds a catalogue entry by id.
func Lookup(id ID) (Descriptor, bool) {
	for _, d := range Catalogue() {
		if d.ID == id {
			return d, true
		}
	}
	return Descriptor{}, false
}
