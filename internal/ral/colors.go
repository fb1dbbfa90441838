package ral

// classic is the RAL Classic subset offered in the colour picker. Hex values
// are the usual screen approximations.
var classic = []Color{
	{Code: "1000", NameFR: "Beige vert", NameEN: "Green beige", Hex: "#CDBA88"},
	{Code: "1001", NameFR: "Beige", NameEN: "Beige", Hex: "#D0B084"},
	{Code: "1002", NameFR: "Jaune sable", NameEN: "Sand yellow", Hex: "#D2AA6D"},
	{Code: "1003", NameFR: "Jaune de sécurité", NameEN: "Signal yellow", Hex: "#F9A900"},
	{Code: "1004", NameFR: "Jaune or", NameEN: "Golden yellow", Hex: "#E49E00"},
	{Code: "1005", NameFR: "Jaune miel", NameEN: "Honey yellow", Hex: "#CB8F00"},
	{Code: "1006", NameFR: "Jaune maïs", NameEN: "Maize yellow", Hex: "#E19000"},
	{Code: "1007", NameFR: "Jaune narcisse", NameEN: "Daffodil yellow", Hex: "#E88C00"},
	{Code: "1011", NameFR: "Beige brun", NameEN: "Brown beige", Hex: "#AF8050"},
	{Code: "1012", NameFR: "Jaune citron", NameEN: "Lemon yellow", Hex: "#DDAF28"},
	{Code: "1013", NameFR: "Blanc perlé", NameEN: "Oyster white", Hex: "#E3D9C6"},
	{Code: "1014", NameFR: "Ivoire", NameEN: "Ivory", Hex: "#DDC49A"},
	{Code: "1015", NameFR: "Ivoire clair", NameEN: "Light ivory", Hex: "#E6D2B5"},
	{Code: "1016", NameFR: "Jaune soufre", NameEN: "Sulfur yellow", Hex: "#F1DD38"},
	{Code: "1017", NameFR: "Jaune safran", NameEN: "Saffron yellow", Hex: "#F6A950"},
	{Code: "1018", NameFR: "Jaune zinc", NameEN: "Zinc yellow", Hex: "#FACA30"},
	{Code: "1019", NameFR: "Beige gris", NameEN: "Grey beige", Hex: "#A48F7A"},
	{Code: "1020", NameFR: "Jaune olive", NameEN: "Olive yellow", Hex: "#A08F65"},
	{Code: "1021", NameFR: "Jaune colza", NameEN: "Rape yellow", Hex: "#F6B600"},
	{Code: "1023", NameFR: "Jaune signalisation", NameEN: "Traffic yellow", Hex: "#F7B500"},
	{Code: "1024", NameFR: "Jaune ocre", NameEN: "Ochre yellow", Hex: "#BA8F4C"},
	{Code: "1028", NameFR: "Jaune melon", NameEN: "Melon yellow", Hex: "#FF9B00"},
	{Code: "1032", NameFR: "Jaune genêt", NameEN: "Broom yellow", Hex: "#E2A300"},
	{Code: "1033", NameFR: "Jaune dahlia", NameEN: "Dahlia yellow", Hex: "#F99A1D"},
	{Code: "1034", NameFR: "Jaune pastel", NameEN: "Pastel yellow", Hex: "#EB9C52"},
	{Code: "2000", NameFR: "Orangé jaune", NameEN: "Yellow orange", Hex: "#DA6E00"},
	{Code: "2001", NameFR: "Orangé rouge", NameEN: "Red orange", Hex: "#BA481C"},
	{Code: "2002", NameFR: "Orangé sang", NameEN: "Vermilion", Hex: "#BF3922"},
	{Code: "2003", NameFR: "Orangé pastel", NameEN: "Pastel orange", Hex: "#F67829"},
	{Code: "2004", NameFR: "Orangé pur", NameEN: "Pure orange", Hex: "#E25304"},
	{Code: "2008", NameFR: "Orangé rouge clair", NameEN: "Bright red orange", Hex: "#E96F3E"},
	{Code: "2009", NameFR: "Orangé signalisation", NameEN: "Traffic orange", Hex: "#D4652F"},
	{Code: "2010", NameFR: "Orangé de sécurité", NameEN: "Signal orange", Hex: "#D05D28"},
	{Code: "2011", NameFR: "Orangé foncé", NameEN: "Deep orange", Hex: "#E26E0E"},
	{Code: "3000", NameFR: "Rouge feu", NameEN: "Flame red", Hex: "#A72920"},
	{Code: "3001", NameFR: "Rouge de sécurité", NameEN: "Signal red", Hex: "#9B2423"},
	{Code: "3002", NameFR: "Rouge carmin", NameEN: "Carmine red", Hex: "#9B2321"},
	{Code: "3003", NameFR: "Rouge rubis", NameEN: "Ruby red", Hex: "#861A22"},
	{Code: "3004", NameFR: "Rouge pourpre", NameEN: "Purple red", Hex: "#6B1C23"},
	{Code: "3005", NameFR: "Rouge vin", NameEN: "Wine red", Hex: "#59191F"},
	{Code: "3007", NameFR: "Rouge noir", NameEN: "Black red", Hex: "#3E2022"},
	{Code: "3009", NameFR: "Rouge oxyde", NameEN: "Oxide red", Hex: "#6D342D"},
	{Code: "3011", NameFR: "Rouge brun", NameEN: "Brown red", Hex: "#792423"},
	{Code: "3012", NameFR: "Rouge beige", NameEN: "Beige red", Hex: "#C6846D"},
	{Code: "3013", NameFR: "Rouge tomate", NameEN: "Tomato red", Hex: "#972E25"},
	{Code: "3014", NameFR: "Vieux rose", NameEN: "Antique pink", Hex: "#CB7375"},
	{Code: "3015", NameFR: "Rose clair", NameEN: "Light pink", Hex: "#D8A0A6"},
	{Code: "3016", NameFR: "Rouge corail", NameEN: "Coral red", Hex: "#A63D30"},
	{Code: "3017", NameFR: "Rosé", NameEN: "Rose", Hex: "#CA555D"},
	{Code: "3018", NameFR: "Rouge fraise", NameEN: "Strawberry red", Hex: "#C63F4A"},
	{Code: "3020", NameFR: "Rouge signalisation", NameEN: "Traffic red", Hex: "#BB1F11"},
	{Code: "3022", NameFR: "Rouge saumon", NameEN: "Salmon pink", Hex: "#CF6955"},
	{Code: "3027", NameFR: "Rouge framboise", NameEN: "Raspberry red", Hex: "#AB273C"},
	{Code: "3028", NameFR: "Rouge pur", NameEN: "Pure red", Hex: "#CC2C24"},
	{Code: "3031", NameFR: "Rouge oriental", NameEN: "Orient red", Hex: "#A63437"},
	{Code: "4001", NameFR: "Lilas rouge", NameEN: "Red lilac", Hex: "#816183"},
	{Code: "4002", NameFR: "Violet rouge", NameEN: "Red violet", Hex: "#8D3C4B"},
	{Code: "4003", NameFR: "Violet bruyère", NameEN: "Heather violet", Hex: "#C4618C"},
	{Code: "4004", NameFR: "Violet bordeaux", NameEN: "Claret violet", Hex: "#651E38"},
	{Code: "4005", NameFR: "Lilas bleu", NameEN: "Blue lilac", Hex: "#76689A"},
	{Code: "4006", NameFR: "Pourpre signalisation", NameEN: "Traffic purple", Hex: "#903373"},
	{Code: "4007", NameFR: "Violet pourpre", NameEN: "Purple violet", Hex: "#47243C"},
	{Code: "4008", NameFR: "Violet de sécurité", NameEN: "Signal violet", Hex: "#844C82"},
	{Code: "4009", NameFR: "Violet pastel", NameEN: "Pastel violet", Hex: "#9D8692"},
	{Code: "4010", NameFR: "Télémagenta", NameEN: "Telemagenta", Hex: "#BC4077"},
	{Code: "5000", NameFR: "Bleu violet", NameEN: "Violet blue", Hex: "#384C70"},
	{Code: "5001", NameFR: "Bleu vert", NameEN: "Green blue", Hex: "#1F4764"},
	{Code: "5002", NameFR: "Bleu outremer", NameEN: "Ultramarine blue", Hex: "#2B2C7C"},
	{Code: "5003", NameFR: "Bleu saphir", NameEN: "Sapphire blue", Hex: "#2A3756"},
	{Code: "5004", NameFR: "Bleu noir", NameEN: "Black blue", Hex: "#1D1F2A"},
	{Code: "5005", NameFR: "Bleu de sécurité", NameEN: "Signal blue", Hex: "#154889"},
	{Code: "5007", NameFR: "Bleu brillant", NameEN: "Brilliant blue", Hex: "#41678D"},
	{Code: "5008", NameFR: "Bleu gris", NameEN: "Grey blue", Hex: "#313C48"},
	{Code: "5009", NameFR: "Bleu azur", NameEN: "Azure blue", Hex: "#2E5978"},
	{Code: "5010", NameFR: "Bleu gentiane", NameEN: "Gentian blue", Hex: "#13447C"},
	{Code: "5011", NameFR: "Bleu acier", NameEN: "Steel blue", Hex: "#232C3F"},
	{Code: "5012", NameFR: "Bleu clair", NameEN: "Light blue", Hex: "#3481B8"},
	{Code: "5013", NameFR: "Bleu cobalt", NameEN: "Cobalt blue", Hex: "#232D53"},
	{Code: "5014", NameFR: "Bleu pigeon", NameEN: "Pigeon blue", Hex: "#6C7C98"},
	{Code: "5015", NameFR: "Bleu ciel", NameEN: "Sky blue", Hex: "#2874B2"},
	{Code: "5017", NameFR: "Bleu signalisation", NameEN: "Traffic blue", Hex: "#0E518D"},
	{Code: "5018", NameFR: "Bleu turquoise", NameEN: "Turquoise blue", Hex: "#21888F"},
	{Code: "5019", NameFR: "Bleu capri", NameEN: "Capri blue", Hex: "#1A5784"},
	{Code: "5020", NameFR: "Bleu océan", NameEN: "Ocean blue", Hex: "#0B4151"},
	{Code: "5021", NameFR: "Bleu d'eau", NameEN: "Water blue", Hex: "#07737A"},
	{Code: "5022", NameFR: "Bleu nocturne", NameEN: "Night blue", Hex: "#2F2A5A"},
	{Code: "5023", NameFR: "Bleu distant", NameEN: "Distant blue", Hex: "#4D668E"},
	{Code: "5024", NameFR: "Bleu pastel", NameEN: "Pastel blue", Hex: "#6A93B0"},
	{Code: "6000", NameFR: "Vert patine", NameEN: "Patina green", Hex: "#3C7460"},
	{Code: "6001", NameFR: "Vert émeraude", NameEN: "Emerald green", Hex: "#366735"},
	{Code: "6002", NameFR: "Vert feuillage", NameEN: "Leaf green", Hex: "#325928"},
	{Code: "6003", NameFR: "Vert olive", NameEN: "Olive green", Hex: "#50533C"},
	{Code: "6004", NameFR: "Vert bleu", NameEN: "Blue green", Hex: "#024442"},
	{Code: "6005", NameFR: "Vert mousse", NameEN: "Moss green", Hex: "#114232"},
	{Code: "6006", NameFR: "Olive gris", NameEN: "Grey olive", Hex: "#3C392E"},
	{Code: "6007", NameFR: "Vert bouteille", NameEN: "Bottle green", Hex: "#2C3222"},
	{Code: "6008", NameFR: "Vert brun", NameEN: "Brown green", Hex: "#37342A"},
	{Code: "6009", NameFR: "Vert sapin", NameEN: "Fir green", Hex: "#27352A"},
	{Code: "6010", NameFR: "Vert herbe", NameEN: "Grass green", Hex: "#4D6F39"},
	{Code: "6011", NameFR: "Vert réséda", NameEN: "Reseda green", Hex: "#6B7C59"},
	{Code: "6012", NameFR: "Vert noir", NameEN: "Black green", Hex: "#2F3D3A"},
	{Code: "6013", NameFR: "Vert jonc", NameEN: "Reed green", Hex: "#7C765A"},
	{Code: "6014", NameFR: "Olive jaune", NameEN: "Yellow olive", Hex: "#474135"},
	{Code: "6015", NameFR: "Olive noir", NameEN: "Black olive", Hex: "#3D3D36"},
	{Code: "6016", NameFR: "Vert turquoise", NameEN: "Turquoise green", Hex: "#00694C"},
	{Code: "6017", NameFR: "Vert mai", NameEN: "May green", Hex: "#587F40"},
	{Code: "6018", NameFR: "Vert jaune", NameEN: "Yellow green", Hex: "#61993B"},
	{Code: "6019", NameFR: "Vert blanc", NameEN: "Pastel green", Hex: "#B9CEAC"},
	{Code: "6020", NameFR: "Vert oxyde chromique", NameEN: "Chrome green", Hex: "#37422F"},
	{Code: "6021", NameFR: "Vert pâle", NameEN: "Pale green", Hex: "#8A9977"},
	{Code: "6024", NameFR: "Vert signalisation", NameEN: "Traffic green", Hex: "#008351"},
	{Code: "6025", NameFR: "Vert fougère", NameEN: "Fern green", Hex: "#5E6E3B"},
	{Code: "6026", NameFR: "Vert opale", NameEN: "Opal green", Hex: "#005F4E"},
	{Code: "6027", NameFR: "Vert clair", NameEN: "Light green", Hex: "#7EBAB5"},
	{Code: "6028", NameFR: "Vert pin", NameEN: "Pine green", Hex: "#315442"},
	{Code: "6029", NameFR: "Vert menthe", NameEN: "Mint green", Hex: "#006F3D"},
	{Code: "6032", NameFR: "Vert de sécurité", NameEN: "Signal green", Hex: "#237F52"},
	{Code: "6033", NameFR: "Turquoise menthe", NameEN: "Mint turquoise", Hex: "#46877F"},
	{Code: "6034", NameFR: "Turquoise pastel", NameEN: "Pastel turquoise", Hex: "#7AADAC"},
	{Code: "7000", NameFR: "Gris petit-gris", NameEN: "Squirrel grey", Hex: "#798790"},
	{Code: "7001", NameFR: "Gris argent", NameEN: "Silver grey", Hex: "#8A959B"},
	{Code: "7002", NameFR: "Gris olive", NameEN: "Olive grey", Hex: "#817863"},
	{Code: "7003", NameFR: "Gris mousse", NameEN: "Moss grey", Hex: "#7A7669"},
	{Code: "7004", NameFR: "Gris de sécurité", NameEN: "Signal grey", Hex: "#9B9B9B"},
	{Code: "7005", NameFR: "Gris souris", NameEN: "Mouse grey", Hex: "#6C6E6B"},
	{Code: "7006", NameFR: "Gris beige", NameEN: "Beige grey", Hex: "#766A5E"},
	{Code: "7008", NameFR: "Gris kaki", NameEN: "Khaki grey", Hex: "#745E3D"},
	{Code: "7009", NameFR: "Gris vert", NameEN: "Green grey", Hex: "#5D6058"},
	{Code: "7010", NameFR: "Gris tente", NameEN: "Tarpaulin grey", Hex: "#585C56"},
	{Code: "7011", NameFR: "Gris fer", NameEN: "Iron grey", Hex: "#52595D"},
	{Code: "7012", NameFR: "Gris basalte", NameEN: "Basalt grey", Hex: "#575D5E"},
	{Code: "7013", NameFR: "Gris brun", NameEN: "Brown grey", Hex: "#575044"},
	{Code: "7015", NameFR: "Gris ardoise", NameEN: "Slate grey", Hex: "#4F5358"},
	{Code: "7016", NameFR: "Gris anthracite", NameEN: "Anthracite grey", Hex: "#383E42"},
	{Code: "7021", NameFR: "Gris noir", NameEN: "Black grey", Hex: "#2F3234"},
	{Code: "7022", NameFR: "Gris terre d'ombre", NameEN: "Umbra grey", Hex: "#4C4A44"},
	{Code: "7023", NameFR: "Gris béton", NameEN: "Concrete grey", Hex: "#808076"},
	{Code: "7024", NameFR: "Gris graphite", NameEN: "Graphite grey", Hex: "#45494E"},
	{Code: "7026", NameFR: "Gris granit", NameEN: "Granite grey", Hex: "#374345"},
	{Code: "7030", NameFR: "Gris pierre", NameEN: "Stone grey", Hex: "#928E85"},
	{Code: "7031", NameFR: "Gris bleu", NameEN: "Blue grey", Hex: "#5B686D"},
	{Code: "7032", NameFR: "Gris silex", NameEN: "Pebble grey", Hex: "#B5B0A1"},
	{Code: "7033", NameFR: "Gris ciment", NameEN: "Cement grey", Hex: "#7F8274"},
	{Code: "7034", NameFR: "Gris jaune", NameEN: "Yellow grey", Hex: "#92886F"},
	{Code: "7035", NameFR: "Gris clair", NameEN: "Light grey", Hex: "#C5C7C4"},
	{Code: "7036", NameFR: "Gris platine", NameEN: "Platinum grey", Hex: "#979392"},
	{Code: "7037", NameFR: "Gris poussière", NameEN: "Dusty grey", Hex: "#7A7B7A"},
	{Code: "7038", NameFR: "Gris agate", NameEN: "Agate grey", Hex: "#B0B0A9"},
	{Code: "7039", NameFR: "Gris quartz", NameEN: "Quartz grey", Hex: "#6B665E"},
	{Code: "7040", NameFR: "Gris fenêtre", NameEN: "Window grey", Hex: "#989EA1"},
	{Code: "7042", NameFR: "Gris signalisation A", NameEN: "Traffic grey A", Hex: "#8E9291"},
	{Code: "7043", NameFR: "Gris signalisation B", NameEN: "Traffic grey B", Hex: "#4F5250"},
	{Code: "7044", NameFR: "Gris soie", NameEN: "Silk grey", Hex: "#B7B3A8"},
	{Code: "7045", NameFR: "Télégris 1", NameEN: "Telegrey 1", Hex: "#8D9295"},
	{Code: "7046", NameFR: "Télégris 2", NameEN: "Telegrey 2", Hex: "#7E868A"},
	{Code: "7047", NameFR: "Télégris 4", NameEN: "Telegrey 4", Hex: "#C8C8C7"},
	{Code: "8000", NameFR: "Brun vert", NameEN: "Green brown", Hex: "#89693E"},
	{Code: "8001", NameFR: "Brun terre de Sienne", NameEN: "Ochre brown", Hex: "#9D622B"},
	{Code: "8002", NameFR: "Brun de sécurité", NameEN: "Signal brown", Hex: "#794D3E"},
	{Code: "8003", NameFR: "Brun argile", NameEN: "Clay brown", Hex: "#7E4B26"},
	{Code: "8004", NameFR: "Brun cuivré", NameEN: "Copper brown", Hex: "#8D4931"},
	{Code: "8007", NameFR: "Brun fauve", NameEN: "Fawn brown", Hex: "#70452A"},
	{Code: "8008", NameFR: "Brun olive", NameEN: "Olive brown", Hex: "#724A25"},
	{Code: "8011", NameFR: "Brun noisette", NameEN: "Nut brown", Hex: "#5A3826"},
	{Code: "8012", NameFR: "Brun rouge", NameEN: "Red brown", Hex: "#66332B"},
	{Code: "8014", NameFR: "Brun sépia", NameEN: "Sepia brown", Hex: "#4A3526"},
	{Code: "8015", NameFR: "Marron", NameEN: "Chestnut brown", Hex: "#5E2F26"},
	{Code: "8016", NameFR: "Brun acajou", NameEN: "Mahogany brown", Hex: "#4C2B20"},
	{Code: "8017", NameFR: "Brun chocolat", NameEN: "Chocolate brown", Hex: "#442F29"},
	{Code: "8019", NameFR: "Brun gris", NameEN: "Grey brown", Hex: "#3D3635"},
	{Code: "8022", NameFR: "Brun noir", NameEN: "Black brown", Hex: "#1A1718"},
	{Code: "8023", NameFR: "Brun orangé", NameEN: "Orange brown", Hex: "#A45729"},
	{Code: "8024", NameFR: "Brun beige", NameEN: "Beige brown", Hex: "#795038"},
	{Code: "8025", NameFR: "Brun pâle", NameEN: "Pale brown", Hex: "#755847"},
	{Code: "8028", NameFR: "Brun terre", NameEN: "Terra brown", Hex: "#513A2A"},
	{Code: "9001", NameFR: "Blanc crème", NameEN: "Cream", Hex: "#E9E0D2"},
	{Code: "9002", NameFR: "Blanc gris", NameEN: "Grey white", Hex: "#D7D5CB"},
	{Code: "9003", NameFR: "Blanc de sécurité", NameEN: "Signal white", Hex: "#ECECE7"},
	{Code: "9004", NameFR: "Noir de sécurité", NameEN: "Signal black", Hex: "#2B2B2C"},
	{Code: "9005", NameFR: "Noir foncé", NameEN: "Jet black", Hex: "#0E0E10"},
	{Code: "9006", NameFR: "Aluminium blanc", NameEN: "White aluminium", Hex: "#A1A1A0"},
	{Code: "9007", NameFR: "Aluminium gris", NameEN: "Grey aluminium", Hex: "#868581"},
	{Code: "9010", NameFR: "Blanc pur", NameEN: "Pure white", Hex: "#F1ECE1"},
	{Code: "9011", NameFR: "Noir graphite", NameEN: "Graphite black", Hex: "#27292B"},
	{Code: "9016", NameFR: "Blanc signalisation", NameEN: "Traffic white", Hex: "#F1F0EA"},
	{Code: "9017", NameFR: "Noir signalisation", NameEN: "Traffic black", Hex: "#2A292A"},
	{Code: "9018", NameFR: "Blanc papyrus", NameEN: "Papyrus white", Hex: "#C8CBC4"},
	{Code: "9022", NameFR: "Gris clair perlé", NameEN: "Pearl light grey", Hex: "#858583"},
	{Code: "9023", NameFR: "Gris foncé perlé", NameEN: "Pearl dark grey", Hex: "#797B7A"},
}
