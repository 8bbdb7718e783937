package profile

import (
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		wantErr bool
	}{
		{
			name: "valid password profile",
			profile: Profile{
				Name: "prod", Host: "example.com", Port: 22,
				Username: "deploy", RemotePath: "/var/www", AuthMethod: AuthPassword,
			},
			wantErr: false,
		},
		{
			name: "valid key profile",
			profile: Profile{
				Name: "staging", Host: "10.0.0.5",
				Username: "deploy", RemotePath: "/srv/app",
				AuthMethod: AuthSSHKey, PrivateKeyPath: "/home/u/.ssh/id_ed25519",
			},
			wantErr: false,
		},
		{
			name: "valid agent profile",
			profile: Profile{
				Name: "agent", Host: "h", Username: "u", AuthMethod: AuthSSHKey,
			},
			wantErr: false,
		},
		{
			name:    "missing name",
			profile: Profile{Host: "h", Username: "u", AuthMethod: AuthPassword},
			wantErr: true,
		},
		{
			name:    "missing host",
			profile: Profile{Name: "p", Username: "u", AuthMethod: AuthPassword},
			wantErr: true,
		},
		{
			name:    "missing username",
			profile: Profile{Name: "p", Host: "h", AuthMethod: AuthPassword},
			wantErr: true,
		},
		{
			name:    "port out of range",
			profile: Profile{Name: "p", Host: "h", Username: "u", Port: 70000, AuthMethod: AuthPassword},
			wantErr: true,
		},
		{
			name:    "unknown auth method",
			profile: Profile{Name: "p", Host: "h", Username: "u", AuthMethod: "kerberos"},
			wantErr: true,
		},
		{
			name: "key path with password auth",
			profile: Profile{
				Name: "p", Host: "h", Username: "u",
				AuthMethod: AuthPassword, PrivateKeyPath: "/k",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.profile.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestRemoteDir(t *testing.T) {
	tests := []struct {
		name       string
		remotePath string
		want       string
	}{
		{"adds trailing slash", "/var/www", "/var/www/"},
		{"keeps trailing slash", "/var/www/", "/var/www/"},
		{"empty path", "", "/"},
		{"root", "/", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Profile{RemotePath: tt.remotePath}
			if got := p.RemoteDir(); got != tt.want {
				t.Errorf("RemoteDir() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetPort(t *testing.T) {
	p := Profile{}
	if got := p.GetPort(); got != 22 {
		t.Errorf("default port = %d, want 22", got)
	}
	p.Port = 2222
	if got := p.GetPort(); got != 2222 {
		t.Errorf("explicit port = %d, want 2222", got)
	}
}

func TestUsesAgent(t *testing.T) {
	agent := Profile{AuthMethod: AuthSSHKey}
	if !agent.UsesAgent() {
		t.Error("ssh-key without key path should use the agent")
	}

	key := Profile{AuthMethod: AuthSSHKey, PrivateKeyPath: "/k"}
	if key.UsesAgent() {
		t.Error("ssh-key with key path should not use the agent")
	}

	password := Profile{AuthMethod: AuthPassword}
	if password.UsesAgent() {
		t.Error("password auth should not use the agent")
	}
}
