/*
Copyright 2026 The llm-d Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// This file provides tls utilities for the outbound completion connection.

package tls

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
)

// Certificates locates the PEM files used for the client side of the connection.
// CertFile, KeyFile and CaCertFile are resolved relative to Dir when Dir is set.
type Certificates struct {
	Dir        string `yaml:"dir"`
	CertFile   string `yaml:"cert_file"`
	KeyFile    string `yaml:"key_file"`
	CaCertFile string `yaml:"ca_cert_file"`
}

func (c Certificates) IsEmpty() bool {
	return reflect.ValueOf(c).IsZero()
}

// ClientOptions describes a client TLS setup. The zero value means "use Go defaults".
type ClientOptions struct {
	Insecure     bool
	Certificates Certificates
	MinVersion   uint16
	MaxVersion   uint16
}

func (o ClientOptions) IsEmpty() bool {
	return !o.Insecure && o.Certificates.IsEmpty() && o.MinVersion == 0 && o.MaxVersion == 0
}

// GetClientTlsConfig builds a client tls.Config. It returns nil, nil when no option is set,
// so callers keep the system roots and default versions.
func GetClientTlsConfig(opts ClientOptions) (*tls.Config, error) {
	if opts.IsEmpty() {
		return nil, nil
	}

	certFile := JoinCertPath(opts.Certificates.Dir, opts.Certificates.CertFile)
	keyFile := JoinCertPath(opts.Certificates.Dir, opts.Certificates.KeyFile)
	caCertFile := JoinCertPath(opts.Certificates.Dir, opts.Certificates.CaCertFile)

	var tlsConf tls.Config
	if certFile != "" || keyFile != "" {
		if certFile == "" || keyFile == "" {
			return nil, fmt.Errorf("GetClientTlsConfig: both cert file and key file must be specified")
		}
		certificate, err := tls.LoadX509KeyPair(certFile, keyFile)
		if err != nil {
			return nil, fmt.Errorf("GetClientTlsConfig: LoadX509KeyPair failed: %w", err) // pragma: allowlist secret
		}
		tlsConf.Certificates = []tls.Certificate{certificate}
	}

	if opts.Insecure {
		tlsConf.InsecureSkipVerify = true
	} else if caCertFile != "" {
		ca, err := os.ReadFile(caCertFile)
		if err != nil {
			return nil, fmt.Errorf("GetClientTlsConfig: could not read CA certificate file: %w", err) // pragma: allowlist secret
		}
		certPool := x509.NewCertPool()
		if ok := certPool.AppendCertsFromPEM(ca); !ok {
			return nil, fmt.Errorf("GetClientTlsConfig: AppendCertsFromPEM failed") // pragma: allowlist secret
		}
		tlsConf.RootCAs = certPool
	}

	if opts.MinVersion != 0 {
		tlsConf.MinVersion = opts.MinVersion
	}
	if opts.MaxVersion != 0 {
		tlsConf.MaxVersion = opts.MaxVersion
	}
	return &tlsConf, nil
}

// Return the cert path only when file is not empty.
func JoinCertPath(dir, file string) string {
	if len(file) > 0 {
		return filepath.Join(dir, file)
	}
	return ""
}
