package classify

// Rule maps a lowercase search term onto a label of the form
// "Core (detail/detail)".
type Rule struct {
	Term  string
	Label string
}

// Whitelist holds the genres a Book may carry as its primary genre.
var Whitelist = []string{
	"Krimi", "Thriller", "Science Fiction", "Biographie", "Liebesroman", "Spionage", "Horror",
	"Fantasy", "Roman", "Fachbuch", "Sprache", "EasyReader", "Comic", "Sachbuch",
}

// Rules is ordered by priority: the first whitelisted hit becomes the
// primary genre.
var Rules = []Rule{
	{"graded reader", "EasyReader (Lernen)"},
	{"easy reader", "EasyReader (Lernen)"},
	{"lektüre", "EasyReader (Lernen)"},
	{"sprachkurs", "Sprache (Lernen)"},
	{"grammatik", "Sprache (Lernen/Grammatik)"},
	{"vokabel", "Sprache (Lernen/Wortschatz)"},
	{"language learning", "Sprache (Lernen)"},
	{"graphic novel", "Comic (Graphic Novel)"},
	{"manga", "Comic (Manga)"},
	{"comic", "Comic"},
	{"spionage", "Spionage (Agenten)"},
	{"espionage", "Spionage (Agenten)"},
	{"geheimdienst", "Spionage (Geheimdienst)"},
	{"spy", "Spionage (Agenten)"},
	{"serienmörder", "Thriller (Serienmörder)"},
	{"psychothriller", "Thriller (Psycho)"},
	{"thriller", "Thriller"},
	{"suspense", "Thriller (Spannung)"},
	{"kriminalroman", "Krimi"},
	{"regionalkrimi", "Krimi (Regional)"},
	{"kommissar", "Krimi (Ermittler)"},
	{"detective", "Krimi (Ermittler)"},
	{"ermittl", "Krimi (Ermittler)"},
	{"mystery", "Krimi (Rätsel)"},
	{"crime", "Krimi"},
	{"krimi", "Krimi"},
	{"mord", "Krimi (Mord)"},
	{"murder", "Krimi (Mord)"},
	{"horror", "Horror"},
	{"vampir", "Horror (Vampire)"},
	{"ghost", "Horror (Geister)"},
	{"science fiction", "Science Fiction"},
	{"sci-fi", "Science Fiction"},
	{"dystop", "Science Fiction (Dystopie)"},
	{"raumschiff", "Science Fiction (Weltraum)"},
	{"space opera", "Science Fiction (Weltraum)"},
	{"zeitreise", "Science Fiction (Zeitreise)"},
	{"time travel", "Science Fiction (Zeitreise)"},
	{"fantasy", "Fantasy"},
	{"magie", "Fantasy (Magie)"},
	{"magic", "Fantasy (Magie)"},
	{"zauber", "Fantasy (Magie)"},
	{"drache", "Fantasy (Drachen)"},
	{"dragon", "Fantasy (Drachen)"},
	{"liebesroman", "Liebesroman"},
	{"romance", "Liebesroman"},
	{"love story", "Liebesroman"},
	{"biografie", "Biographie"},
	{"biographie", "Biographie"},
	{"biography", "Biographie"},
	{"autobiograph", "Biographie (Autobiographie)"},
	{"memoir", "Biographie (Erinnerungen)"},
	{"lehrbuch", "Fachbuch (Lehrbuch)"},
	{"handbuch", "Fachbuch (Handbuch)"},
	{"programmier", "Fachbuch (Informatik)"},
	{"computers", "Fachbuch (Informatik)"},
	{"textbook", "Fachbuch (Lehrbuch)"},
	{"sachbuch", "Sachbuch"},
	{"business", "Sachbuch (Wirtschaft)"},
	{"wirtschaft", "Sachbuch (Wirtschaft)"},
	{"management", "Sachbuch (Wirtschaft/Management)"},
	{"ratgeber", "Sachbuch (Ratgeber)"},
	{"self-help", "Sachbuch (Ratgeber)"},
	{"history", "Sachbuch (Geschichte)"},
	{"geschichte des", "Sachbuch (Geschichte)"},
	{"philosoph", "Sachbuch (Philosophie)"},
	{"psycholog", "Sachbuch (Psychologie)"},
	{"roman", "Roman"},
	{"novel", "Roman"},
	{"fiction", "Roman"},
	{"erzählung", "Roman (Erzählung)"},
	{"historischer roman", "Historisch (Epoche)"},
	{"historical", "Historisch (Epoche)"},
	{"mittelalter", "Historisch (Mittelalter)"},
	{"weltkrieg", "Historisch (Krieg)"},
	{"world war", "Historisch (Krieg)"},
	{"familiensaga", "Familie (Saga)"},
	{"coming of age", "Jugend (Erwachsenwerden)"},
	{"jugendbuch", "Jugend"},
	{"young adult", "Jugend"},
	{"kinderbuch", "Kinder"},
	{"humor", "Humor"},
	{"satire", "Humor (Satire)"},
	{"abenteuer", "Abenteuer"},
	{"adventure", "Abenteuer"},
}

// RegionTerms maps lowercase search terms onto region tags.
var RegionTerms = []Rule{
	{"schweden", "Skandinavien"},
	{"sweden", "Skandinavien"},
	{"norwegen", "Skandinavien"},
	{"norway", "Skandinavien"},
	{"dänemark", "Skandinavien"},
	{"denmark", "Skandinavien"},
	{"island", "Skandinavien"},
	{"finnland", "Skandinavien"},
	{"schottland", "Großbritannien"},
	{"scotland", "Großbritannien"},
	{"england", "Großbritannien"},
	{"london", "Großbritannien"},
	{"irland", "Irland"},
	{"ireland", "Irland"},
	{"frankreich", "Frankreich"},
	{"france", "Frankreich"},
	{"paris", "Frankreich"},
	{"italien", "Italien"},
	{"italy", "Italien"},
	{"venedig", "Italien"},
	{"sizilien", "Italien"},
	{"spanien", "Spanien"},
	{"spain", "Spanien"},
	{"barcelona", "Spanien"},
	{"berlin", "Deutschland"},
	{"münchen", "Deutschland"},
	{"hamburg", "Deutschland"},
	{"deutschland", "Deutschland"},
	{"germany", "Deutschland"},
	{"österreich", "Österreich"},
	{"wien", "Österreich"},
	{"schweiz", "Schweiz"},
	{"new york", "USA"},
	{"amerika", "USA"},
	{"america", "USA"},
	{"usa", "USA"},
	{"kanada", "Kanada"},
	{"canada", "Kanada"},
	{"japan", "Asien"},
	{"china", "Asien"},
	{"indien", "Asien"},
	{"india", "Asien"},
	{"afrika", "Afrika"},
	{"africa", "Afrika"},
	{"russland", "Russland"},
	{"russia", "Russland"},
}
