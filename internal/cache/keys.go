package cache

func KeyFile(fileID string) string {
	return Key("files", fileID)
}

func KeyShare(token string) string {
	return Key("shares", token)
}
