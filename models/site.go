package models

// Section is a titled block of landing-page copy.
type Section struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Action      string `json:"action,omitempty"`
}

// Link is an outbound social or messenger link.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
	Kind  string `json:"kind"`
}

// SiteContent is the static copy of the landing page.
type SiteContent struct {
	Name     string        `json:"name"`
	Tagline  string        `json:"tagline"`
	About    []string      `json:"about"`
	Services []Section     `json:"services"`
	Support  []Section     `json:"support"`
	Contacts []Link        `json:"contacts"`
	Palette  []ColorOption `json:"palette"`
}

// DefaultSiteContent returns the landing page copy.
func DefaultSiteContent() SiteContent {
	return SiteContent{
		Name:    "Reunion Production",
		Tagline: "Создаём визуальные истории, которые остаются в памяти",
		About: []string{
			"Мы — фанатское объединение, которое воплощает в жизнь истории из любимых вселенных с профессиональным подходом.",
			"Наша страсть к кинематографу и преданность легендарным франшизам вдохновляет нас создавать качественный фан-контент, который достоин оригинальных произведений.",
			"От концепции до постпродакшена — мы подходим к каждому проекту с вниманием к деталям и уважением к исходному материалу.",
		},
		Services: []Section{
			{Title: "Видеопродакшн", Description: "Полный цикл производства видеоконтента от идеи до монтажа"},
			{Title: "Рекламные ролики", Description: "Создание эффективной рекламы для различных медиаплатформ"},
			{Title: "Корпоративные фильмы", Description: "Презентация вашего бизнеса через качественное видео"},
			{Title: "Музыкальные клипы", Description: "Визуальное воплощение музыкальных произведений"},
			{Title: "Event съёмка", Description: "Профессиональная съёмка мероприятий любого масштаба"},
			{Title: "Постпродакшн", Description: "Монтаж, цветокоррекция, звуковой дизайн и спецэффекты"},
		},
		Support: []Section{
			{Title: "Финансовая поддержка", Description: "Поддержите наши проекты через Boosty и Patreon", Action: "Поддержать"},
			{Title: "Присоединиться к команде", Description: "Ищем актёров, костюмеров, операторов и монтажёров", Action: "Связаться"},
			{Title: "Техническая помощь", Description: "Оборудование, локации, экспертиза — любая помощь важна", Action: "Предложить"},
		},
		Contacts: []Link{
			{Label: "Telegram: @ReunionRS", URL: "https://t.me/ReunionRS", Kind: "telegram"},
			{Label: "Канал: Imperial Commando", URL: "https://t.me/FanFilmImperialCommando", Kind: "telegram"},
			{Label: "YouTube", URL: "https://www.youtube.com/@IlyaSmirnov-z4n", Kind: "youtube"},
			{Label: "TikTok: @ilushacosplayer", URL: "https://www.tiktok.com/@ilushacosplayer", Kind: "tiktok"},
		},
		Palette: Palette,
	}
}
