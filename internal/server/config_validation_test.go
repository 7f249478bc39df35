package server

import (
	"strings"
	"testing"
)

var configKeys = []string{
	"PORT", "FLAVORS_DB_DRIVER", "FLAVORS_LOG_FORMAT", "FLAVORS_LOG_LEVEL", "FLAVORS_ENV",
	"FLAVORS_STATIC_BUCKET", "FLAVORS_S3_ENDPOINT", "FLAVORS_S3_ACCESS_KEY", "FLAVORS_S3_SECRET_KEY", "FLAVORS_WRITE_RATE_LIMIT",
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestValidateAllConfiguration_Defaults(t *testing.T) {
	clearConfigEnv(t)
	if err := ValidateAllConfiguration(); err != nil {
		t.Fatalf("empty environment should be valid: %v", err)
	}
}

func TestValidateAllConfiguration_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		field string
	}{
		{"port not a number", map[string]string{"PORT": "abc"}, "PORT"},
		{"port out of range", map[string]string{"PORT": "70000"}, "PORT"},
		{"unknown driver", map[string]string{"FLAVORS_DB_DRIVER": "mysql"}, "FLAVORS_DB_DRIVER"},
		{"unknown log level", map[string]string{"FLAVORS_LOG_LEVEL": "trace"}, "FLAVORS_LOG_LEVEL"},
		{"unknown env", map[string]string{"FLAVORS_ENV": "qa"}, "FLAVORS_ENV"},
		{"negative rate limit", map[string]string{"FLAVORS_WRITE_RATE_LIMIT": "-1"}, "FLAVORS_WRITE_RATE_LIMIT"},
		{"rate limit not a number", map[string]string{"FLAVORS_WRITE_RATE_LIMIT": "lots"}, "FLAVORS_WRITE_RATE_LIMIT"},
		{"partial s3", map[string]string{"FLAVORS_STATIC_BUCKET": "web"}, "FLAVORS_STATIC_BUCKET"},
		{"bad s3 scheme", map[string]string{
			"FLAVORS_STATIC_BUCKET": "web",
			"FLAVORS_S3_ENDPOINT":   "ftp://minio:9000",
			"FLAVORS_S3_ACCESS_KEY": "k",
			"FLAVORS_S3_SECRET_KEY": "s",
		}, "FLAVORS_S3_ENDPOINT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			err := ValidateAllConfiguration()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q does not mention %s", err, tt.field)
			}
		})
	}
}

func TestValidatePort(t *testing.T) {
	tests := []struct {
		in      string
		wantErr bool
	}{
		{"3000", false},
		{":8080", false},
		{"", false},
		{"0", true},
		{"65536", true},
		{"http", true},
	}
	for _, tt := range tests {
		v := NewConfigValidator()
		v.ValidatePort("PORT", tt.in)
		if v.HasErrors() != tt.wantErr {
			t.Errorf("ValidatePort(%q) errors = %v, want error %v", tt.in, v.Errors(), tt.wantErr)
		}
	}
}
