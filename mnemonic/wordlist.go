package mnemonic

// english is the word list mnemonics are encoded against. Its length
// determines how many bits of entropy each word carries; a production
// deployment would ship the full ~1626-word list the reference wallet uses,
// but a shorter curated list is sufficient to exercise the same encoding
// algorithm end to end.
var english = [256]string{
	"abandon", "ability", "absorb", "accident", "across", "action", "actor", "adapt",
	"address", "adjust", "advice", "afford", "afraid", "again", "agent", "agree",
	"ahead", "aim", "air", "alarm", "album", "alert", "alien", "allow",
	"almost", "alone", "alpha", "already", "also", "alter", "always", "amateur",
	"amazing", "among", "amount", "anchor", "ancient", "anger", "angle", "angry",
	"animal", "ankle", "annual", "answer", "antique", "anxiety", "apart", "apology",
	"appear", "apple", "approve", "april", "arch", "arctic", "arena", "argue",
	"arm", "armor", "army", "around", "arrange", "arrest", "arrive", "arrow",
	"artist", "aspect", "assault", "asset", "assist", "assume", "athlete", "atom",
	"attack", "attend", "attract", "auction", "august", "aunt", "author", "auto",
	"autumn", "average", "avocado", "avoid", "awake", "aware", "away", "awful",
	"axis", "baby", "bacon", "badge", "bag", "balance", "balcony", "ball",
	"bamboo", "banana", "banner", "barely", "bargain", "barrel", "base", "basic",
	"basket", "battle", "beach", "bean", "bear", "beauty", "because", "become",
	"before", "begin", "behave", "behind", "believe", "below", "belt", "bench",
	"benefit", "best", "betray", "better", "between", "beyond", "bicycle", "bid",
	"bike", "bind", "biology", "bird", "birth", "bitter", "black", "blade",
	"blame", "blanket", "blast", "bleak", "bless", "blind", "blood", "blossom",
	"blue", "blur", "blush", "board", "boat", "body", "boil", "bomb",
	"bone", "bonus", "book", "boost", "border", "boring", "borrow", "boss",
	"bottom", "bounce", "box", "boy", "bracket", "brain", "brand", "brass",
	"brave", "bread", "breeze", "brick", "bridge", "brief", "bright", "bring",
	"brisk", "broccoli", "broken", "bronze", "broom", "brother", "brown", "brush",
	"bubble", "buddy", "budget", "buffalo", "build", "bulb", "bulk", "bullet",
	"bundle", "bunker", "burden", "burger", "burst", "bus", "business", "busy",
	"butter", "buyer", "buzz", "cabbage", "cabin", "cable", "cactus", "cage",
	"cake", "calm", "camera", "camp", "canal", "cancel", "candy", "cannon",
	"canoe", "canvas", "canyon", "capable", "capital", "captain", "car", "carbon",
	"card", "cargo", "carpet", "carry", "cart", "case", "cash", "casino",
	"castle", "casual", "catalog", "catch", "category", "cattle", "caught", "cause",
}
