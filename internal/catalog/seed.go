package catalog

// DefaultItems is the built-in catalog served when nothing has been stored yet.
func DefaultItems() []Item {
	return []Item{
		{
			ID:           "bat-trang-bowl",
			Name:         "バッチャン焼き 藍の小鉢",
			Price:        3800,
			ShortStory:   "ハノイ郊外の陶器村で、一筆ずつ描かれた藍の花。",
			FullStory:    "紅河のほとり、七百年続く陶器村バッチャン。職人のホアさんは毎朝、窯の温度を手で確かめてから筆をとります。",
			MakerName:    "Hoa",
			MakerStory:   "三代続く窯元の娘。祖母の図案を今の食卓に合う大きさで描き直している。",
			Region:       "Bát Tràng",
			RegionInfo:   "ハノイ中心部から車で40分。村全体が工房。",
			MaterialInfo: "陶器（高温焼成）。電子レンジ可。",
			UsageTips:    "食洗機は避け、柔らかいスポンジで洗ってください。",
			VideoURL:     "https://cdn.xinchao.example/videos/bat-trang-bowl.mp4",
			ThumbnailURL: "https://cdn.xinchao.example/thumbs/bat-trang-bowl.jpg",
			Images: []string{
				"https://cdn.xinchao.example/images/bat-trang-bowl-1.jpg",
				"https://cdn.xinchao.example/images/bat-trang-bowl-2.jpg",
			},
		},
		{
			ID:           "phu-vinh-rattan-basket",
			Name:         "フーヴィン村のラタンバスケット",
			Price:        6200,
			ShortStory:   "編み目の細かさは、村の女性たちの午後の会話の長さ。",
			FullStory:    "フーヴィン村では農閑期になると家々の軒先でラタンが編まれます。ランさんのバスケットは日本の部屋にもなじむ控えめな色。",
			MakerName:    "Lan",
			MakerStory:   "編み歴二十年。若い職人に編み方を教える教室を開いている。",
			Region:       "Phú Vinh",
			RegionInfo:   "ハノイ南西の籐・竹細工の村。",
			MaterialInfo: "ラタン（籐）、天然仕上げ。",
			UsageTips:    "直射日光と湿気を避け、乾いた布で拭いてください。",
			VideoURL:     "https://cdn.xinchao.example/videos/phu-vinh-rattan-basket.mp4",
			ThumbnailURL: "https://cdn.xinchao.example/thumbs/phu-vinh-rattan-basket.jpg",
			Images: []string{
				"https://cdn.xinchao.example/images/phu-vinh-rattan-basket-1.jpg",
			},
		},
		{
			ID:           "hoi-an-embroidery-pouch",
			Name:         "ホイアン刺繍のポーチ",
			Price:        2400,
			ShortStory:   "ランタンの灯りの下で縫われた、小さな蓮の花。",
			FullStory:    "古都ホイアンの刺繍工房では、一枚のポーチに三日かけて蓮を縫い上げます。ギフトにもかさばらない大きさです。",
			MakerName:    "Mai",
			MakerStory:   "十五歳から針を持つ刺繍職人。図案はすべて手描き。",
			Region:       "Hội An",
			RegionInfo:   "中部の港町。旧市街は世界遺産。",
			MaterialInfo: "綿、絹糸。",
			UsageTips:    "手洗いで、陰干ししてください。",
			VideoURL:     "https://cdn.xinchao.example/videos/hoi-an-embroidery-pouch.mp4",
			ThumbnailURL: "https://cdn.xinchao.example/thumbs/hoi-an-embroidery-pouch.jpg",
			Images: []string{
				"https://cdn.xinchao.example/images/hoi-an-embroidery-pouch-1.jpg",
				"https://cdn.xinchao.example/images/hoi-an-embroidery-pouch-2.jpg",
				"https://cdn.xinchao.example/images/hoi-an-embroidery-pouch-3.jpg",
			},
		},
		{
			ID:           "tuong-binh-hiep-lacquer-tray",
			Name:         "トゥオンビンヒエップの漆トレイ",
			Price:        8900,
			ShortStory:   "十数回塗り重ねて、卵の殻で描いた月。",
			FullStory:    "ビンズオン省の漆村で、卵殻を一片ずつ貼って模様をつくるソンマイ技法のトレイ。",
			MakerName:    "Tuấn",
			MakerStory:   "父から工房を継ぎ、伝統技法で日常使いの道具をつくる。",
			Region:       "Tương Bình Hiệp",
			RegionInfo:   "ホーチミン市の北、漆器の里。",
			MaterialInfo: "木地、天然漆、卵殻。",
			UsageTips:    "熱い器を直接置かず、水気はすぐに拭き取ってください。",
			VideoURL:     "https://cdn.xinchao.example/videos/tuong-binh-hiep-lacquer-tray.mp4",
			ThumbnailURL: "https://cdn.xinchao.example/thumbs/tuong-binh-hiep-lacquer-tray.jpg",
			Images: []string{
				"https://cdn.xinchao.example/images/tuong-binh-hiep-lacquer-tray-1.jpg",
			},
		},
	}
}
