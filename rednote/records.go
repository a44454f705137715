package rednote

// 规整后的稳定输出结构。无论数据来自哪个接口版本，字段集合固定，
// 缺失值使用确定的零值（空串/0/false），绝不输出 null —— 下游按键索引。
// 输出沿用统一中文键 JSON 的约定。

// AuthorRef 笔记/评论上携带的作者信息。
// 粉丝数等明细字段仅在开启作者详情采集时填充。
type AuthorRef struct {
	UserID     string `json:"作者ID"`
	Nickname   string `json:"作者昵称"`
	RedID      string `json:"小红书号"`
	Verified   bool   `json:"是否官方认证"`
	Fans       int64  `json:"作者粉丝数"`
	LikedTotal int64  `json:"作者获赞与收藏数"`
	Desc       string `json:"作者简介"`
	ProfileURL string `json:"作者主页链接"`
}

// NoteRecord 规整后的笔记
type NoteRecord struct {
	ID          string    `json:"笔记ID"`
	URL         string    `json:"笔记链接"`
	Title       string    `json:"标题"`
	Content     string    `json:"笔记正文"`
	Type        string    `json:"笔记类型"` // 图文笔记/视频笔记/其它原值
	Likes       int64     `json:"点赞数"`
	Comments    int64     `json:"评论数"`
	Collects    int64     `json:"收藏数"`
	Nices       int64     `json:"好看数"`
	Shares      int64     `json:"分享数"`
	Views       int64     `json:"浏览数"`
	CoverURL    string    `json:"封面图链接"`
	ImageURLs   []string  `json:"笔记图片链接"`
	VideoURL    string    `json:"视频链接"`
	VideoURLs   []string  `json:"视频备选链接"`
	Tags        []string  `json:"笔记tag"`
	PublishTime string    `json:"发布时间"`
	IsGoodsNote bool      `json:"是否商品笔记"`
	InTimeRange bool      `json:"是否在时间范围内"`
	Author      AuthorRef `json:"作者"`
}

// UserRecord 规整后的用户
type UserRecord struct {
	UserID     string `json:"用户ID"`
	Nickname   string `json:"用户昵称"`
	RedID      string `json:"小红书号"`
	Desc       string `json:"简介"`
	Fans       int64  `json:"粉丝数"`
	LikedTotal int64  `json:"获赞与收藏数"`
	NoteCount  int64  `json:"笔记数"`
	Location   string `json:"IP属地"`
	AvatarURL  string `json:"头像链接"`
	Verified   bool   `json:"是否官方认证"`
	ProfileURL string `json:"主页链接"`
}

// CommentRecord 规整后的评论
type CommentRecord struct {
	ID          string `json:"评论ID"`
	NoteID      string `json:"笔记ID"`
	Content     string `json:"评论内容"`
	Likes       int64  `json:"点赞数"`
	Time        string `json:"发布时间"`
	Location    string `json:"发布地点"`
	Level       string `json:"评论级别"` // 根评论/二级评论
	SubComments int64  `json:"二级评论数"`
	Nickname    string `json:"昵称"`
	RedID       string `json:"小红书号"`
	UserID      string `json:"用户ID"`
	AuthorID    string `json:"作者ID"` // 笔记作者，用于标注楼主
	Verified    bool   `json:"是否官方认证"`
	ReplyTo     string `json:"回复目标"` // 二级评论回复的根评论昵称
	RootID      string `json:"根评论ID"`
}

// newNoteRecord 返回各字段均为确定零值的笔记记录
func newNoteRecord() *NoteRecord {
	return &NoteRecord{
		ImageURLs: []string{},
		VideoURLs: []string{},
		Tags:      []string{},
	}
}
