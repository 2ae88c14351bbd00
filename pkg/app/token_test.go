package app

import (
	"testing"
	"time"
)

func TestGenerateAndParseToken(t *testing.T) {
	secretKey := "user-secret"
	uid := int64(1001)
	client := "Web"
	authType := "token"

	// 1. 测试生成和解析
	token, err := GenerateTokenWithKey(uid, client, authType, secretKey, 24*time.Hour)
	if err != nil {
		t.Fatalf("GenerateTokenWithKey failed: %v", err)
	}

	parsedUser, err := ParseTokenWithKey(token, secretKey)
	if err != nil {
		t.Fatalf("ParseTokenWithKey failed: %v", err)
	}

	// 验证字段
	if parsedUser.UID != uid {
		t.Errorf("Expected UID %d, got %d", uid, parsedUser.UID)
	}
	if parsedUser.Client != client {
		t.Errorf("Expected Client %q, got %q", client, parsedUser.Client)
	}
	if parsedUser.AuthType != authType {
		t.Errorf("Expected AuthType %q, got %q", authType, parsedUser.AuthType)
	}

	// 验证 ExpiresAt (由于只存了秒级 Unix 戳，允许 1 秒内的误差)
	expectedExp := time.Now().Add(24 * time.Hour)
	if parsedUser.ExpiresAt.Unix() < expectedExp.Unix()-1 || parsedUser.ExpiresAt.Unix() > expectedExp.Unix()+1 {
		t.Errorf("Expected ExpiresAt around %v, got %v", expectedExp, parsedUser.ExpiresAt)
	}

	// 2. 测试错误的密钥
	wrongToken, _ := GenerateTokenWithKey(uid, client, authType, "wrong-secret", 24*time.Hour)
	if _, err := ParseTokenWithKey(wrongToken, secretKey); err == nil {
		t.Error("Expected error when parsing token with wrong secret key, but got nil")
	}

	// 3. 测试篡改后的 Token
	tamperedToken := token + "tampered"
	if _, err := ParseTokenWithKey(tamperedToken, secretKey); err == nil {
		t.Error("Expected error for tampered token, but got nil")
	}
}

func TestParseExpiredToken(t *testing.T) {
	secretKey := "user-secret"

	// 过期 Token 解析失败
	token, err := GenerateTokenWithKey(1, "Web", "token", secretKey, -time.Hour)
	if err != nil {
		t.Fatalf("GenerateTokenWithKey failed: %v", err)
	}
	if _, err := ParseTokenWithKey(token, secretKey); err == nil {
		t.Error("Expected error for expired token, but got nil")
	}
}
