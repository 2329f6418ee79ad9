// Package k8s implements a source.Source that streams a build pod's
// container log, for package managers running inside a CI pod rather than
// on the operator's own machine.
package k8s

import (
	"context"
	"errors"
	"io"
	"path/filepath"

	"github.com/bascanada/buildlog/pkg/source"
	v1 "k8s.io/api/core/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
	"k8s.io/client-go/util/homedir"

	_ "k8s.io/client-go/plugin/pkg/client/auth"
)

const (
	optionKubeConfig = "kubeConfig"
	optionNamespace  = "namespace"
	optionPod        = "pod"
	optionContainer  = "container"
	optionPrevious   = "previous"
)

type k8sSource struct {
	kubeConfig string
	namespace  string
	pod        string
	container  string
	previous   bool
}

func init() {
	source.Register("k8s", func(opts map[string]string) (source.Source, error) {
		return newSource(opts)
	})
}

func newSource(opts map[string]string) (k8sSource, error) {
	s := k8sSource{
		kubeConfig: opts[optionKubeConfig],
		namespace:  opts[optionNamespace],
		pod:        opts[optionPod],
		container:  opts[optionContainer],
		previous:   opts[optionPrevious] == "true",
	}
	if s.pod == "" {
		return k8sSource{}, errors.New("k8s source: pod is required")
	}
	return s, nil
}

func (s k8sSource) Open(ctx context.Context) (io.ReadCloser, error) {
	clientset, err := s.clientset()
	if err != nil {
		return nil, err
	}

	logOptions := &v1.PodLogOptions{
		Follow:    true,
		Container: s.container,
		Previous:  s.previous,
	}

	return clientset.CoreV1().Pods(s.namespace).GetLogs(s.pod, logOptions).Stream(ctx)
}

func (s k8sSource) clientset() (*kubernetes.Clientset, error) {
	kubeconfig := s.kubeConfig
	if kubeconfig == "" {
		kubeconfig = filepath.Join(homedir.HomeDir(), ".kube", "config")
	}

	cfg, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
	if err != nil {
		return nil, err
	}
	return kubernetes.NewForConfig(cfg)
}
