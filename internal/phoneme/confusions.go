package phoneme

// confusionKey builds an order-independent lookup key for a phoneme pair.
func confusionKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "\x00" + b
}

// defaultConfusions maps unordered phoneme pairs that learners commonly
// substitute for each other to a short corrective tip. The tip is phrased
// for the learner, not the linguist.
var defaultConfusions = map[string]string{
	// Nasal vs oral vowels (French, Portuguese, Polish targets).
	confusionKey("e", "ɛ̃"):  "Let air flow through your nose — this vowel is nasalised.",
	confusionKey("ɛ", "ɛ̃"):  "Keep the tongue position but add nasal airflow.",
	confusionKey("a", "ɑ̃"):  "Open wide and release the sound through the nose.",
	confusionKey("o", "ɔ̃"):  "Round the lips and let the vowel resonate nasally.",
	confusionKey("ɔ", "ɔ̃"):  "Same mouth shape, but the air should exit the nose.",
	confusionKey("œ", "œ̃"): "Add nasal resonance while keeping the lips rounded.",

	// Rhotics.
	confusionKey("ʁ", "r"): "Produce the r far back in the throat, not with the tongue tip.",
	confusionKey("ʁ", "ɹ"): "This r is a soft friction at the back of the throat, not the English glide.",
	confusionKey("r", "ɹ"): "Tap or trill the tongue tip instead of gliding.",
	confusionKey("ʀ", "ɹ"): "Trill at the uvula, far back in the mouth.",

	// Interdental vs alveolar fricatives.
	confusionKey("θ", "s"): "Place the tongue tip between the teeth, not behind them.",
	confusionKey("θ", "t"): "Let air hiss between tongue and teeth rather than stopping it.",
	confusionKey("ð", "z"): "Touch the teeth with the tongue tip while voicing.",
	confusionKey("ð", "d"): "Keep air flowing — this sound is a fricative, not a stop.",

	// Front rounded vowels.
	confusionKey("y", "u"): "Say 'ee' with the lips rounded as for 'oo'.",
	confusionKey("ø", "ə"): "Round the lips while keeping the tongue forward.",
	confusionKey("œ", "ɛ"): "Same tongue height, but round the lips.",

	// Common consonant slips.
	confusionKey("ʃ", "s"):  "Pull the tongue slightly back and round the lips a little.",
	confusionKey("ʒ", "z"):  "Same as the s/sh contrast, but voiced.",
	confusionKey("v", "w"):  "Touch the upper teeth to the lower lip — no lip rounding.",
	confusionKey("b", "v"):  "Let the lips buzz against the teeth instead of closing fully.",
	confusionKey("ɲ", "n"):  "Press the middle of the tongue to the palate, like 'ny' in canyon.",
	confusionKey("x", "k"):  "Keep the tongue close but do not close completely — air should scrape through.",
	confusionKey("ŋ", "n"):  "Raise the back of the tongue, as at the end of 'sing'.",
	confusionKey("ç", "ʃ"):  "Whisper a 'y' — the friction sits at the hard palate.",
	confusionKey("l", "ɾ"):  "Tap the ridge behind the teeth once, very lightly.",
	confusionKey("u", "ʊ"):  "Relax the lips and shorten the vowel.",
	confusionKey("i", "ɪ"):  "Relax the tongue slightly — this vowel is laxer and shorter.",
}

// TipFor returns the corrective tip for an unordered phoneme pair, or the
// empty string when the pair is not a known confusion.
func TipFor(target, spoken string) string {
	return defaultConfusions[confusionKey(target, spoken)]
}
