package utils

import (
	"math/rand"
	"time"
)

// GetTrustLevelName 根据信任等级返回展示名称
func GetTrustLevelName(level int) (name string, icon string) {
	switch level {
	case 3:
		return "座上宾", "🏮"
	case 2:
		return "墨友", "🖌️"
	case 1:
		return "常客", "📜"
	default:
		return "新客", "🖋️"
	}
}

// GetDaysSinceJoined 计算注册天数
func GetDaysSinceJoined(createdAt time.Time) int {
	return int(time.Since(createdAt).Hours() / 24)
}

// GetRandomEmoji 返回一个随机 emoji 用于默认头像
func GetRandomEmoji() string {
	emojis := []string{"🖋️", "📜", "🖌️", "🏮", "📖", "🍵", "🌙", "🏔️", "🦉", "🐈", "🎐", "🪶"}
	return emojis[rand.Intn(len(emojis))]
}

// GetCommonEmojis 返回常用 emoji 列表供用户选择
func GetCommonEmojis() []string {
	return []string{
		"🖋️", "📜", "🖌️", "🏮", "📖", "🍵", "🌙", "🏔️",
		"🦉", "🐈", "🎐", "🪶", "🐼", "🦊", "🐨", "🐸",
		"😀", "😃", "😄", "😁", "😊", "😎", "🤓", "🧐",
		"👨‍💻", "👩‍💻", "👨‍🎨", "👩‍🎨", "🧑‍🚀", "👨‍🔬", "👩‍🔬", "🧙",
		"⭐", "✨", "🔥", "💡", "🚀", "🎯", "💎", "🏆",
	}
}
